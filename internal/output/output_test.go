package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HerbHall/netsampler/internal/catalog"
	"github.com/HerbHall/netsampler/pkg/models"
)

func records() []models.OutputRecord {
	return []models.OutputRecord{
		{Metric: "Ipkts", ID: "2128:Packets In:4", Value: "100.00", Object: "en0"},
		{Metric: "Ierrs", ID: "2130:Errors In:4", Value: "3.00", Object: "en0"},
		{Metric: "Ibytes", ID: "2126:MB In/s:4", Value: "5.00", Object: "en0"},
		{Metric: "Ipkts", ID: "2128:Packets In:4", Value: "0", Object: "lo0"},
	}
}

func TestWrite_AllEnabled(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewFormatter(catalog.AllEnabled(cat)).Write(&buf, records())
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	assert.Equal(t,
		"2128:Packets In:4|100.00|en0\n"+
			"2130:Errors In:4|3.00|en0\n"+
			"2126:MB In/s:4|5.00|en0\n"+
			"2128:Packets In:4|0|lo0\n",
		buf.String())
}

func TestWrite_SecondMetricDisabled(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	sel, err := catalog.ParseSelection(cat, "1,0,1,1,1,1,1,1")
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewFormatter(sel).Write(&buf, records())
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.NotContains(t, buf.String(), "2130:Errors In:4")
}

func TestFilter_PreservesOrder(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	sel, err := catalog.ParseSelection(cat, "1,0,0,0,0,0,0,0")
	require.NoError(t, err)

	got := NewFormatter(sel).Filter(records())
	require.Len(t, got, 2)
	assert.Equal(t, "en0", got[0].Object)
	assert.Equal(t, "lo0", got[1].Object)
}

func TestFilter_Empty(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewFormatter(catalog.AllEnabled(cat)).Write(&buf, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWrite_Error(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	_, err = NewFormatter(catalog.AllEnabled(cat)).Write(failingWriter{}, records())
	assert.Error(t, err)
}

func TestLine(t *testing.T) {
	r := models.OutputRecord{ID: "2132:Packet Collisions:4", Value: "0.00", Object: "bridge0"}
	assert.Equal(t, "2132:Packet Collisions:4|0.00|bridge0", Line(r))
}
