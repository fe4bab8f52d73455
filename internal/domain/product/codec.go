package product

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Decode reads a product in the catalog API wire format.
func (p *Product) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "code":
			p.Code, err = optString(d)
		case "name":
			p.Name, err = optString(d)
		case "description":
			p.Description, err = optString(d)
		case "category":
			p.Category.Code, p.Category.DisplayName, err = decodeCoded(d)
		case "metalType":
			p.MetalType.Code, p.MetalType.DisplayName, err = decodeCoded(d)
		case "gender":
			p.Gender, err = optString(d)
		case "weight":
			p.Weight, err = optString(d)
		case "price":
			p.Price, err = decodePrice(d)
		case "images":
			p.Images, err = decodeStrings(d)
		case "isNewProduct":
			p.IsNew, err = optBool(d)
		case "isOnSale":
			p.OnSale, err = optBool(d)
		case "isFeatured":
			p.Featured, err = optBool(d)
		case "availableSizes":
			p.Sizes, err = decodeStrings(d)
		case "createdAt":
			p.CreatedAt, err = decodeTime(d)
		case "updatedAt":
			p.UpdatedAt, err = decodeTime(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "decode %q", key)
		}
		return nil
	})
}

// Encode writes a product in the catalog API wire format.
func (p Product) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(p.Code)
	e.FieldStart("name")
	e.Str(p.Name)
	if p.Description != "" {
		e.FieldStart("description")
		e.Str(p.Description)
	}
	e.FieldStart("category")
	encodeCoded(e, p.Category.Code, p.Category.DisplayName)
	e.FieldStart("metalType")
	encodeCoded(e, p.MetalType.Code, p.MetalType.DisplayName)
	if p.Gender != "" {
		e.FieldStart("gender")
		e.Str(p.Gender)
	}
	if p.Weight != "" {
		e.FieldStart("weight")
		e.Str(p.Weight)
	}
	e.FieldStart("price")
	e.Num(jx.Num(p.Price.String()))
	e.FieldStart("images")
	encodeStrings(e, p.Images)
	e.FieldStart("isNewProduct")
	e.Bool(p.IsNew)
	e.FieldStart("isOnSale")
	e.Bool(p.OnSale)
	e.FieldStart("isFeatured")
	e.Bool(p.Featured)
	e.FieldStart("availableSizes")
	encodeStrings(e, p.Sizes)
	if !p.CreatedAt.IsZero() {
		e.FieldStart("createdAt")
		e.Str(p.CreatedAt.UTC().Format(time.RFC3339Nano))
	}
	if !p.UpdatedAt.IsZero() {
		e.FieldStart("updatedAt")
		e.Str(p.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	e.ObjEnd()
}

// Decode reads a list response: {"items": [...], "total": n}.
func (r *ResultSet) Decode(d *jx.Decoder) error {
	r.Items = r.Items[:0]
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "items":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Arr(func(d *jx.Decoder) error {
				var p Product
				if err := p.Decode(d); err != nil {
					return err
				}
				r.Items = append(r.Items, p)
				return nil
			})
		case "total":
			n, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "decode total")
			}
			r.Total = n
			return nil
		default:
			return d.Skip()
		}
	})
}

// Encode writes a list response.
func (r ResultSet) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, p := range r.Items {
		p.Encode(e)
	}
	e.ArrEnd()
	e.FieldStart("total")
	e.Int(r.Total)
	e.ObjEnd()
}

// Decode reads a filter vocabulary response.
func (v *Vocabulary) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "categories":
			return d.Arr(func(d *jx.Decoder) error {
				code, name, err := decodeCoded(d)
				if err != nil {
					return err
				}
				v.Categories = append(v.Categories, Category{Code: code, DisplayName: name})
				return nil
			})
		case "metalTypes":
			return d.Arr(func(d *jx.Decoder) error {
				code, name, err := decodeCoded(d)
				if err != nil {
					return err
				}
				v.MetalTypes = append(v.MetalTypes, MetalType{Code: code, DisplayName: name})
				return nil
			})
		default:
			return d.Skip()
		}
	})
}

// Encode writes a filter vocabulary response.
func (v Vocabulary) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("categories")
	e.ArrStart()
	for _, c := range v.Categories {
		encodeCoded(e, c.Code, c.DisplayName)
	}
	e.ArrEnd()
	e.FieldStart("metalTypes")
	e.ArrStart()
	for _, m := range v.MetalTypes {
		encodeCoded(e, m.Code, m.DisplayName)
	}
	e.ArrEnd()
	e.ObjEnd()
}

func decodeCoded(d *jx.Decoder) (code, name string, err error) {
	if d.Next() == jx.Null {
		return "", "", d.Null()
	}
	err = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "code":
			code, err = optString(d)
		case "displayName":
			name, err = optString(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return code, name, err
}

func encodeCoded(e *jx.Encoder, code, name string) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(code)
	e.FieldStart("displayName")
	e.Str(name)
	e.ObjEnd()
}

func decodeStrings(d *jx.Decoder) ([]string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	out := []string{}
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func encodeStrings(e *jx.Encoder, values []string) {
	e.ArrStart()
	for _, s := range values {
		e.Str(s)
	}
	e.ArrEnd()
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Null:
		return decimal.Zero, d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	}
}

func decodeTime(d *jx.Decoder) (time.Time, error) {
	s, err := optString(d)
	if err != nil || s == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}

func optString(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func optBool(d *jx.Decoder) (bool, error) {
	if d.Next() == jx.Null {
		return false, d.Null()
	}
	return d.Bool()
}
