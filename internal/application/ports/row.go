package ports

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// lookup busca field en la fila. Los campos relacionados ("product.rec_name") pueden
// llegar planos o anidados bajo "product." según la versión del servidor.
func (r Row) lookup(field string) (any, bool) {
	if v, ok := r[field]; ok {
		return v, true
	}
	head, tail, found := strings.Cut(field, ".")
	if !found {
		return nil, false
	}
	nested, ok := r[head+"."].(map[string]any)
	if !ok {
		return nil, false
	}
	return Row(nested).lookup(tail)
}

// Int64 devuelve un entero (ids y many2one). Un many2one vacío (null/false) es 0.
func (r Row) Int64(field string) (int64, error) {
	v, ok := r.lookup(field)
	if !ok || v == nil || v == false {
		return 0, nil
	}
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("campo %s: entero inesperado %T", field, v)
}

// String devuelve un texto; valores no texto se formatean y null/false es "".
func (r Row) String(field string) string {
	v, ok := r.lookup(field)
	if !ok || v == nil || v == false {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Decimal devuelve una cantidad. Acepta números JSON, textos y el objeto
// {"__class__": "Decimal", "decimal": "5.00"} con que Tryton serializa Decimal.
func (r Row) Decimal(field string) (decimal.Decimal, error) {
	v, ok := r.lookup(field)
	if !ok || v == nil || v == false {
		return decimal.Zero, nil
	}
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	case map[string]any:
		if n["__class__"] == "Decimal" {
			if s, ok := n["decimal"].(string); ok {
				return decimal.NewFromString(s)
			}
		}
	}
	return decimal.Zero, fmt.Errorf("campo %s: cantidad inesperada %T", field, v)
}
