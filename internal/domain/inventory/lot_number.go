package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LotNumberPrefix prefijo literal de los números de lote generados.
const LotNumberPrefix = "LOT"

// LotNumberGenerator genera números de lote con formato LOT + AAAAMMDD + últimos 4 del producto + sufijo de 4.
// Reloj y sufijo son inyectables para pruebas deterministas.
type LotNumberGenerator struct {
	now    func() time.Time
	suffix func() string
}

// NewLotNumberGenerator usa el reloj del sistema y un sufijo derivado de un UUID aleatorio.
func NewLotNumberGenerator() *LotNumberGenerator {
	return NewLotNumberGeneratorWith(time.Now, randomSuffix)
}

// NewLotNumberGeneratorWith permite inyectar reloj y fuente de sufijos (nil usa los del sistema).
func NewLotNumberGeneratorWith(now func() time.Time, suffix func() string) *LotNumberGenerator {
	if now == nil {
		now = time.Now
	}
	if suffix == nil {
		suffix = randomSuffix
	}
	return &LotNumberGenerator{now: now, suffix: suffix}
}

// Generate construye el número de lote para el producto.
func (g *LotNumberGenerator) Generate(productID string) string {
	code := productID
	if len(code) > 4 {
		code = code[len(code)-4:]
	}
	suffix := g.suffix()
	if len(suffix) > 4 {
		suffix = suffix[:4]
	}
	return LotNumberPrefix + g.now().UTC().Format("20060102") + strings.ToUpper(code) + strings.ToUpper(suffix)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
}
