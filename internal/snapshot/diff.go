package snapshot

import "reflect"

// field order of ChangedFields output
var comparedFields = []struct {
	name  string
	value func(Snapshot) interface{}
}{
	{"items", func(s Snapshot) interface{} { return s.Items }},
	{"subtotal", func(s Snapshot) interface{} { return s.Subtotal }},
	{"tax", func(s Snapshot) interface{} { return s.Tax }},
	{"total", func(s Snapshot) interface{} { return s.Total }},
	{"customerId", func(s Snapshot) interface{} { return s.CustomerID }},
	{"customerName", func(s Snapshot) interface{} { return s.CustomerName }},
	{"customerEmail", func(s Snapshot) interface{} { return s.CustomerEmail }},
	{"customerPhone", func(s Snapshot) interface{} { return s.CustomerPhone }},
	{"customerAddress", func(s Snapshot) interface{} { return s.CustomerAddress }},
	{"customerCompanyName", func(s Snapshot) interface{} { return s.CustomerCompanyName }},
	{"shippingDetails", func(s Snapshot) interface{} { return s.ShippingDetails }},
	{"notes", func(s Snapshot) interface{} { return s.Notes }},
	{"termsAndConditions", func(s Snapshot) interface{} { return s.TermsAndConditions }},
}

// ChangedFields names the fields whose values differ between before and
// after. The result is empty, never nil, when nothing changed.
func ChangedFields(before, after Snapshot) []string {
	changed := []string{}
	for _, f := range comparedFields {
		if !reflect.DeepEqual(f.value(before), f.value(after)) {
			changed = append(changed, f.name)
		}
	}
	return changed
}
