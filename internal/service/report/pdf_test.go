package report

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPluckerTable(t *testing.T) {
	rows := []pluckerRow{
		{Name: "Amara", TotalCollection: 15, TotalEarnings: decimal.RequireFromString("37.50"), Status: "active"},
		{Name: "Bimal", TotalCollection: 0, TotalEarnings: decimal.Zero, Status: "inactive"},
	}

	out, err := renderPluckerTable("Plucker Performance Report", "2023-05-01 to 2023-05-31", rows)
	require.NoError(t, err)
	require.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderPluckerTable_ManyRowsPaginates(t *testing.T) {
	var rows []pluckerRow
	for i := 0; i < 120; i++ {
		rows = append(rows, pluckerRow{
			Name:            fmt.Sprintf("Plucker %03d", i),
			TotalCollection: float64(i),
			TotalEarnings:   decimal.NewFromInt(int64(i * 10)),
			Status:          "active",
		})
	}

	out, err := renderPluckerTable("Plucker Performance Report", "2023-01-01 to 2023-12-31", rows)
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
}

func TestRenderPluckerTable_NoRows(t *testing.T) {
	out, err := renderPluckerTable("Plucker Performance Report", "2023-05-01 to 2023-05-31", nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
