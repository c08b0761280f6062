package shipment

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
)

// DefaultProductCodeThreshold valor a partir del cual una lectura se considera código de producto.
// Los códigos de barras son largos; las cantidades digitadas a mano son cortas.
const DefaultProductCodeThreshold = 100000

// LooksLikeProductCode indica si la lectura es un código de producto (valor numérico > threshold).
// Una lectura no numérica nunca es código de producto.
func LooksLikeProductCode(token string, threshold int64) bool {
	v, err := decimal.NewFromString(strings.TrimSpace(token))
	if err != nil {
		return false
	}
	return v.GreaterThan(decimal.NewFromInt(threshold))
}

// MatchLine devuelve la primera línea cuyo producto coincide con productID.
func MatchLine(moves []*entity.Move, productID int64) (*entity.Move, bool) {
	for _, m := range moves {
		if m.ProductID == productID {
			return m, true
		}
	}
	return nil, false
}
