package decoder

import (
	"errors"
	"net/url"

	"github.com/gorilla/schema"
)

// New returns a decoder for form bodies and query strings. Unknown keys are ignored because
// OAuth2 password forms carry grant_type, scope and client fields we do not use.
func New() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.ZeroEmpty(false)
	return d
}

// Decode fills dst from src and reports conversion failures per field.
func Decode(d *schema.Decoder, dst any, src url.Values) map[string]string {
	err := d.Decode(dst, src)
	if err == nil {
		return nil
	}
	fieldErrs := make(map[string]string)
	var multi schema.MultiError
	if errors.As(err, &multi) {
		for key, e := range multi {
			var conv schema.ConversionError
			if errors.As(e, &conv) {
				fieldErrs[conv.Key] = "Value has an invalid type"
				continue
			}
			fieldErrs[key] = e.Error()
		}
		return fieldErrs
	}
	fieldErrs["_"] = err.Error()
	return fieldErrs
}
