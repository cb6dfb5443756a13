package ledger_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/internal/domain/ledger"
)

func mov(kind, category string, amount int64, at time.Time) *entity.Movement {
	return &entity.Movement{
		Ledger:    entity.LedgerClinicCash,
		Key:       "2026-01-29",
		Kind:      kind,
		Category:  category,
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: at,
	}
}

func TestFold_EfectivoYTarjeta(t *testing.T) {
	base := time.Date(2026, 1, 29, 9, 0, 0, 0, time.UTC)
	movs := []*entity.Movement{
		mov(entity.KindEntrada, "efectivo", 50000, base),
		mov(entity.KindEntrada, "tarjeta", 30000, base.Add(time.Minute)),
	}

	agg := ledger.Fold(entity.LedgerClinicCash, "2026-01-29", movs, base.Add(time.Hour))

	assert.True(t, agg.TotalsByCategory["efectivo"].Equal(decimal.NewFromInt(50000)))
	assert.True(t, agg.TotalsByCategory["tarjeta"].Equal(decimal.NewFromInt(30000)))
	assert.True(t, agg.GrandTotal.Equal(decimal.NewFromInt(80000)))
	assert.Equal(t, 2, agg.MovementCount)
}

func TestFold_OrdenNoAltera(t *testing.T) {
	base := time.Date(2026, 1, 29, 8, 0, 0, 0, time.UTC)
	var movs []*entity.Movement
	cats := []string{"efectivo", "tarjeta", "transferencia"}
	for i := 0; i < 40; i++ {
		amount := int64(1000 * (i + 1))
		kind := entity.KindEntrada
		if i%5 == 0 {
			amount = -amount
			kind = entity.KindSalida
		}
		movs = append(movs, mov(kind, cats[i%3], amount, base.Add(time.Duration(i)*time.Minute)))
	}
	asOf := base.Add(24 * time.Hour)
	want := ledger.Fold(entity.LedgerClinicCash, "2026-01-29", movs, asOf)

	r := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		shuffled := append([]*entity.Movement(nil), movs...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := ledger.Fold(entity.LedgerClinicCash, "2026-01-29", shuffled, asOf)
		require.True(t, want.GrandTotal.Equal(got.GrandTotal), "ronda %d", round)
		for _, c := range cats {
			require.True(t, want.TotalsByCategory[c].Equal(got.TotalsByCategory[c]), "ronda %d categoría %s", round, c)
		}
	}
}

func TestFold_RespetaAsOf(t *testing.T) {
	base := time.Date(2026, 1, 29, 8, 0, 0, 0, time.UTC)
	movs := []*entity.Movement{
		mov(entity.KindEntrada, "efectivo", 10000, base),
		mov(entity.KindEntrada, "efectivo", 5000, base.Add(2*time.Hour)),
	}

	agg := ledger.Fold(entity.LedgerClinicCash, "2026-01-29", movs, base.Add(time.Hour))
	assert.True(t, agg.GrandTotal.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 1, agg.MovementCount)

	agg = ledger.Fold(entity.LedgerClinicCash, "2026-01-29", movs, base.Add(2*time.Hour))
	assert.True(t, agg.GrandTotal.Equal(decimal.NewFromInt(15000)), "el límite asOf es inclusivo")
}

func TestFold_CategoriaPorDefectoEsElTipo(t *testing.T) {
	now := time.Now()
	agg := ledger.Fold(entity.LedgerMediasInventory, "prod-1", []*entity.Movement{
		{Kind: entity.KindCompra, Amount: decimal.NewFromInt(10), CreatedAt: now},
		{Kind: entity.KindVenta, Amount: decimal.NewFromInt(-3), CreatedAt: now},
	}, now)

	assert.True(t, agg.TotalsByCategory[entity.KindCompra].Equal(decimal.NewFromInt(10)))
	assert.True(t, agg.TotalsByCategory[entity.KindVenta].Equal(decimal.NewFromInt(-3)))
	assert.True(t, agg.GrandTotal.Equal(decimal.NewFromInt(7)))
}

func TestValidateMovement(t *testing.T) {
	cases := []struct {
		name    string
		ledger  string
		kind    string
		amount  int64
		wantErr error
	}{
		{"caja entrada positiva", entity.LedgerClinicCash, entity.KindEntrada, 100, nil},
		{"caja entrada negativa", entity.LedgerClinicCash, entity.KindEntrada, -100, domain.ErrInvalidAmount},
		{"caja salida positiva", entity.LedgerClinicCash, entity.KindSalida, 100, domain.ErrInvalidAmount},
		{"caja salida negativa", entity.LedgerMediasCash, entity.KindSalida, -100, nil},
		{"caja devolución resta", entity.LedgerMediasCash, entity.KindDevolucion, -100, nil},
		{"caja ajuste negativo", entity.LedgerClinicCash, entity.KindAjuste, -1, nil},
		{"inventario compra suma", entity.LedgerMediasInventory, entity.KindCompra, 5, nil},
		{"inventario venta positiva", entity.LedgerMediasInventory, entity.KindVenta, 5, domain.ErrInvalidAmount},
		{"inventario devolución suma", entity.LedgerMediasInventory, entity.KindDevolucion, 1, nil},
		{"monto cero", entity.LedgerMediasInventory, entity.KindAjuste, 0, domain.ErrInvalidAmount},
		{"tipo desconocido", entity.LedgerClinicCash, "regalo", 10, domain.ErrInvalidInput},
		{"libro desconocido", "caja_farmacia", entity.KindEntrada, 10, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.ValidateMovement(tc.ledger, tc.kind, decimal.NewFromInt(tc.amount))
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
			assert.NotEmpty(t, domain.Reason(err))
		})
	}
}

func TestValidateCashKey(t *testing.T) {
	assert.NoError(t, ledger.ValidateCashKey("2026-01-29"))
	assert.ErrorIs(t, ledger.ValidateCashKey("2026-02-30"), domain.ErrUnknownKey)
	assert.ErrorIs(t, ledger.ValidateCashKey("29/01/2026"), domain.ErrUnknownKey)
	assert.ErrorIs(t, ledger.ValidateCashKey(""), domain.ErrUnknownKey)
}
