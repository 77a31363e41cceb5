package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// FlexString decodes JSON strings and numbers alike. Catalog exports use
// both representations for asset ids and indexes.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	*s = FlexString(string(data))
	return nil
}

func (s FlexString) String() string { return string(s) }

// MediaAsset is one media entry attached to a product.
type MediaAsset struct {
	AssetID            FlexString `json:"assetId"`
	Code               string     `json:"code"`
	CSSImageSection    string     `json:"cssImageSection,omitempty"`
	Index              FlexString `json:"index,omitempty"`
	LastModified       string     `json:"lastModified,omitempty"`
	MediaURL           string     `json:"mediaURL"`
	Mime               string     `json:"mime"`
	ProductContentType string     `json:"productContentType,omitempty"`
	Name               string     `json:"name,omitempty"`
	SoftDelete         bool       `json:"softDelete"`
}

// Attribute returns the named asset attribute as a string. The boolean is
// false when the attribute is unknown or empty.
func (m MediaAsset) Attribute(name string) (string, bool) {
	var v string
	switch name {
	case "assetId":
		v = string(m.AssetID)
	case "code":
		v = m.Code
	case "cssImageSection":
		v = m.CSSImageSection
	case "index":
		v = string(m.Index)
	case "lastModified":
		v = m.LastModified
	case "mediaURL":
		v = m.MediaURL
	case "mime":
		v = m.Mime
	case "productContentType":
		v = m.ProductContentType
	case "name":
		v = m.Name
	case "softDelete":
		v = strconv.FormatBool(m.SoftDelete)
	default:
		return "", false
	}
	return v, v != ""
}

// Product is a catalog entity. String attributes are addressed by field name
// through Value; everything else is preserved verbatim in Extra so exports
// round-trip.
type Product struct {
	ID           string
	Code         string
	Name         string
	CategoryName string
	SubCategory  string
	Media        []MediaAsset
	Attributes   map[string]string
	Extra        map[string]json.RawMessage
}

var reservedProductKeys = map[string]struct{}{
	"id": {}, "code": {}, "name": {}, "categoryName": {}, "subCategory": {}, "media": {},
}

// Value returns the text stored under a field name. Absent attributes
// return ok=false, which callers treat as the absent sentinel.
func (p Product) Value(field string) (string, bool) {
	switch field {
	case "id":
		return p.ID, p.ID != ""
	case "code":
		return p.Code, p.Code != ""
	case "name":
		return p.Name, p.Name != ""
	case "categoryName":
		return p.CategoryName, p.CategoryName != ""
	case "subCategory":
		return p.SubCategory, p.SubCategory != ""
	}
	v, ok := p.Attributes[field]
	return v, ok
}

// Text returns the value of a field or the empty string when absent.
func (p Product) Text(field string) string {
	v, _ := p.Value(field)
	return v
}

// Has reports whether the product carries the attribute at all, even empty.
func (p Product) Has(field string) bool {
	if _, ok := reservedProductKeys[field]; ok {
		return true
	}
	_, ok := p.Attributes[field]
	return ok
}

// WithValue returns a copy of the product with one attribute replaced.
func (p Product) WithValue(field, value string) Product {
	out := p.Clone()
	switch field {
	case "name":
		out.Name = value
	case "code", "id", "categoryName", "subCategory":
		return out
	default:
		if out.Attributes == nil {
			out.Attributes = map[string]string{}
		}
		out.Attributes[field] = value
	}
	return out
}

// DisplayName prefers the assortment name used in the dashboard.
func (p Product) DisplayName() string {
	if v := p.Text("assortmentProductName"); v != "" {
		return v
	}
	return p.Name
}

// Category returns the category or "Unknown".
func (p Product) Category() string {
	if p.CategoryName == "" {
		return "Unknown"
	}
	return p.CategoryName
}

// Identifier returns the product id, falling back to its code.
func (p Product) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Code
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	out := p
	out.Media = append([]MediaAsset(nil), p.Media...)
	if p.Attributes != nil {
		out.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			out.Attributes[k] = v
		}
	}
	if p.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// FieldNames lists the text attribute names in sorted order.
func (p Product) FieldNames() []string {
	names := make([]string, 0, len(p.Attributes))
	for k := range p.Attributes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// UnmarshalJSON flattens a catalog product object into the accessor model.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Product{Attributes: map[string]string{}}
	for key, value := range raw {
		switch key {
		case "id", "code", "name", "categoryName", "subCategory":
			var s FlexString
			if err := json.Unmarshal(value, &s); err != nil {
				return err
			}
			switch key {
			case "id":
				out.ID = string(s)
			case "code":
				out.Code = string(s)
			case "name":
				out.Name = string(s)
			case "categoryName":
				out.CategoryName = string(s)
			case "subCategory":
				out.SubCategory = string(s)
			}
		case "media":
			if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
				continue
			}
			if err := json.Unmarshal(value, &out.Media); err != nil {
				return err
			}
		default:
			if s, ok := scalarString(value); ok {
				out.Attributes[key] = s
				continue
			}
			if out.Extra == nil {
				out.Extra = map[string]json.RawMessage{}
			}
			out.Extra[key] = append(json.RawMessage(nil), value...)
		}
	}
	*p = out
	return nil
}

// MarshalJSON writes the product back in the flat catalog shape.
func (p Product) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(p.Attributes)+len(p.Extra)+6)
	for k, v := range p.Extra {
		obj[k] = v
	}
	for k, v := range p.Attributes {
		obj[k] = v
	}
	if p.ID != "" {
		obj["id"] = p.ID
	}
	obj["code"] = p.Code
	obj["name"] = p.Name
	if p.CategoryName != "" {
		obj["categoryName"] = p.CategoryName
	}
	if p.SubCategory != "" {
		obj["subCategory"] = p.SubCategory
	}
	media := p.Media
	if media == nil {
		media = []MediaAsset{}
	}
	obj["media"] = media
	return json.Marshal(obj)
}

func scalarString(value json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}
