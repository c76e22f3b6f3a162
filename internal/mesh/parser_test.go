package mesh

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TwoRecords(t *testing.T) {
	input := `*NEWRECORD
RECTYPE = D
MH = Neoplasms
UI = D009369
MN = C04

*NEWRECORD
RECTYPE = D
MH = Carcinoma
UI = D002277
MN = C04.557.470.200
MN = C04.557.580
`

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "D009369", records[0].UI)
	assert.Equal(t, "Neoplasms", records[0].Name)
	assert.Equal(t, []string{"C04"}, records[0].TreeNumbers)

	// Parser state must reset at each *NEWRECORD: the second record only
	// carries its own tree numbers.
	assert.Equal(t, "D002277", records[1].UI)
	assert.Equal(t, "Carcinoma", records[1].Name)
	assert.Equal(t, []string{"C04.557.470.200", "C04.557.580"}, records[1].TreeNumbers)
}

func TestParse_MissingTreeNumberDropped(t *testing.T) {
	input := `*NEWRECORD
UI = D000001
MH = Calcimycin
MN = D03.633.100.221.173

*NEWRECORD
UI = D005260
MH = Female

*NEWRECORD
UI = D009369
MH = Neoplasms
MN = C04
`

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// "Female" has no MN line and is silently dropped.
	assert.Equal(t, "D000001", records[0].UI)
	assert.Equal(t, "D009369", records[1].UI)
}

func TestParse_MissingUIDropped(t *testing.T) {
	input := `*NEWRECORD
MH = Orphan Heading
MN = C04.123
`

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_LastRecordFlushed(t *testing.T) {
	// A single record with no *NEWRECORD delimiter at all.
	input := `UI = D009369
MH = Neoplasms
MN = C04`

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "D009369", records[0].UI)
	assert.Equal(t, []string{"C04"}, records[0].TreeNumbers)
}

func TestParse_InvalidBytesSubstituted(t *testing.T) {
	// 0xe9 is latin-1 "é", invalid as a standalone UTF-8 sequence.
	input := "*NEWRECORD\nUI = D000001\nMH = S\xe9zary Syndrome\nMN = C04.557\n"

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "S�zary Syndrome", records[0].Name)
}

func TestParse_RepeatedSingleValueFieldOverwrites(t *testing.T) {
	input := `*NEWRECORD
UI = D000001
UI = D000002
MH = First
MH = Second
MN = C04
`

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "D000002", records[0].UI)
	assert.Equal(t, "Second", records[0].Name)
}

func TestNewParser_MissingFile(t *testing.T) {
	_, err := NewParser("testdata/does-not-exist.bin")
	require.Error(t, err)
}

func TestParser_Streaming(t *testing.T) {
	input := `*NEWRECORD
UI = D000001
MH = One
MN = C04.100

*NEWRECORD
UI = D000002
MH = Two
MN = C04.200
`

	p := NewParserFromReader(strings.NewReader(input))

	rec, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "D000001", rec.UI)

	rec, err = p.Next()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "D000002", rec.UI)

	rec, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Next after exhaustion stays nil.
	rec, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, rec)
}
