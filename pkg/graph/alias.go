package graph

import (
	"github.com/tidwall/gjson"

	"github.com/mapstead/skiptrace/pkg/common"
)

// The lookup provider's schema is versioned and undocumented; the same
// logical field arrives under different names depending on provider
// version. Every field access therefore goes through an ordered list of
// candidate keys, first present non-null value wins. Adding a new
// provider alias is a one-line change to these tables.

// bucket describes one recognized top-level grouping of a raw response
// and how its entries normalize.
type bucket struct {
	keys     []string
	kind     common.Kind
	category string
	fields   map[string][]string
	primary  string
}

var personFields = map[string][]string{
	"name":     {"personName", "name", "fullName", "full_name", "Name"},
	"personId": {"personId", "person_id", "tahoeId", "tahoe_id", "id"},
	"age":      {"age", "Age"},
	"dob":      {"dob", "dateOfBirth", "date_of_birth", "born"},
}

var addressFields = map[string][]string{
	"street": {"streetAddress", "street", "address_line1", "addressLine1", "Street", "line1"},
	"city":   {"city", "City", "locality"},
	"state":  {"state", "State", "region", "stateCode"},
	"postal": {"postal", "zip", "zipCode", "postalCode", "zip_code", "postal_code"},
}

var phoneFields = map[string][]string{
	"number": {"phoneNumber", "number", "phone", "Phone Number", "phone_number"},
	"type":   {"type", "phoneType", "lineType", "line_type"},
}

var emailFields = map[string][]string{
	"email": {"email", "emailAddress", "address", "Email Address", "email_address"},
}

var imageFields = map[string][]string{
	"url":     {"url", "imageUrl", "href", "src", "image_url"},
	"caption": {"caption", "title", "description"},
}

var propertyFields = map[string][]string{
	"street": addressFields["street"],
	"city":   addressFields["city"],
	"state":  addressFields["state"],
	"postal": addressFields["postal"],
	"value":  {"value", "assessedValue", "estimatedValue", "assessed_value"},
	"use":    {"use", "useCode", "propertyUse", "property_use"},
}

// buckets is scanned in order against the top level of a raw response.
var buckets = []bucket{
	{
		keys:    []string{"Person Details", "personDetails", "PersonDetails", "person_details"},
		kind:    common.KindPerson,
		fields:  personFields,
		primary: "name",
	},
	{
		keys:     []string{"Relatives", "relatives", "Possible Relatives", "possibleRelatives", "possible_relatives"},
		kind:     common.KindPerson,
		category: "relative",
		fields:   personFields,
		primary:  "name",
	},
	{
		keys:     []string{"Associates", "associates", "Possible Associates", "possibleAssociates", "possible_associates"},
		kind:     common.KindPerson,
		category: "associate",
		fields:   personFields,
		primary:  "name",
	},
	{
		keys:     []string{"Current Address", "Current Addresses", "currentAddress", "currentAddresses", "current_addresses"},
		kind:     common.KindAddress,
		category: "current",
		fields:   addressFields,
		primary:  "street",
	},
	{
		keys:     []string{"Previous Addresses", "Previous Address", "previousAddresses", "previousAddress", "previous_addresses"},
		kind:     common.KindAddress,
		category: "previous",
		fields:   addressFields,
		primary:  "street",
	},
	{
		keys:    []string{"Phone Numbers", "phoneNumbers", "phones", "Phones", "phone_numbers"},
		kind:    common.KindPhone,
		fields:  phoneFields,
		primary: "number",
	},
	{
		keys:    []string{"Email Addresses", "emailAddresses", "emails", "Emails", "email_addresses"},
		kind:    common.KindEmail,
		fields:  emailFields,
		primary: "email",
	},
	{
		keys:    []string{"Images", "images", "Photos", "photos"},
		kind:    common.KindImage,
		fields:  imageFields,
		primary: "url",
	},
	{
		keys:    []string{"Properties", "properties", "Property Details", "propertyDetails", "property_details"},
		kind:    common.KindProperty,
		fields:  propertyFields,
		primary: "street",
	},
}

var statusFields = map[string][]string{
	"status":  {"status", "Status", "code"},
	"message": {"message", "Message", "error", "detail"},
}

// probe returns the value of the first candidate key that is present
// and non-null in the object, along with the key that matched.
func probe(obj map[string]gjson.Result, candidates []string) (gjson.Result, string, bool) {
	for _, key := range candidates {
		v, ok := obj[key]
		if !ok || v.Type == gjson.Null {
			continue
		}
		return v, key, true
	}
	return gjson.Result{}, "", false
}

// scalarValue converts a gjson leaf into the value stored in an entity
// field map. Objects and arrays are not scalars and yield nothing.
func scalarValue(v gjson.Result) (any, bool) {
	switch v.Type {
	case gjson.String:
		return v.String(), true
	case gjson.Number:
		return v.Float(), true
	case gjson.True, gjson.False:
		return v.Bool(), true
	}
	return nil, false
}

// extractFields resolves every logical field of the table against one
// raw entry. Unresolved fields stay absent from the result.
func extractFields(entry map[string]gjson.Result, table map[string][]string) map[string]any {
	fields := make(map[string]any)
	for name, candidates := range table {
		v, _, ok := probe(entry, candidates)
		if !ok {
			continue
		}
		if val, ok := scalarValue(v); ok {
			fields[name] = val
		}
	}
	return fields
}
