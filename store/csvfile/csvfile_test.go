package csvfile_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/store/csvfile"
)

const export = `Store Name,Item_Code,Item Barcode,Description,Category,Department,Sub-Department,Section,Quantity,Total Sales,RRP,Supplier,Date Of Sale,Till
Bamburi,1001,6001,Elianto 1L,Foods,Grocery,Cooking Oils,Vegetable Oil,2,"1,040.00",560,BIDCO,2025-09-22,T3
Kilimani,1002,,Kapa 2L,Foods,Grocery,Cooking Oils,Vegetable Oil,1,980,,KAPA,22/09/2025,T1
`

func TestParse_MapsExportHeaders(t *testing.T) {
	records, stats, err := csvfile.Parse(strings.NewReader(export))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Rows)
	assert.Zero(t, stats.Skipped)
	assert.Equal(t, []string{"Till"}, stats.Unmapped)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "Bamburi", r.StoreName)
	assert.Equal(t, "1001", r.ItemCode)
	assert.Equal(t, "Cooking Oils", r.SubDepartment)
	assert.True(t, r.TotalSales.Decimal.Equal(decimal.NewFromInt(1040)))
	assert.Equal(t, time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC), r.Date)

	// blanks load as missing, not zero
	assert.False(t, records[1].RRP.Valid)
	assert.True(t, records[1].Missing(retail.FieldBarcode))
	assert.Equal(t, r.Date, records[1].Date)
}

func TestParse_NoKnownColumns(t *testing.T) {
	_, _, err := csvfile.Parse(strings.NewReader("a,b\n1,2\n"))
	assert.True(t, retail.IsValidation(err))
}

func TestSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))

	table, err := csvfile.Source{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "csv:"+path, table.Source)
}

func TestSource_LoadLogsUnusableInput(t *testing.T) {
	// GIVEN: the export plus a row with a broken quote
	path := filepath.Join(t.TempDir(), "sales.csv")
	data := export + "Nyali,1004,6004,\"Bad \"quote,Foods,Grocery,Cooking Oils,Vegetable Oil,1,500,560,BIDCO,2025-09-22,T2\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// WHEN
	table, err := csvfile.Source{Path: path, Logger: logger}.Load(context.Background())

	// THEN: the good rows load and the skipped row and extra column are reported
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "rows=3")
	assert.Contains(t, out, "skipped=1")
	assert.Contains(t, out, "Till")
}

func TestSource_LoadHeaderOnlyIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("Store Name,Item_Code\n"), 0o600))

	_, err := csvfile.Source{Path: path}.Load(context.Background())
	assert.ErrorIs(t, err, retail.ErrEmptyTable)
}
