package dataset_test

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroPower/csvdash/pkg/dataset"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		opts    func(*dataset.Options)
		wantErr error
		in      string
		want    *dataset.Table
	}{
		"header and rows": {
			in: "date,amount\n2024-01-01,100\n2024-01-02,200\n",
			want: &dataset.Table{
				Columns: []string{"date", "amount"},
				Rows:    [][]string{{"2024-01-01", "100"}, {"2024-01-02", "200"}},
			},
		},
		"header only": {
			in: "date,amount\n",
			want: &dataset.Table{
				Columns: []string{"date", "amount"},
				Rows:    [][]string{},
			},
		},
		"bom and padded header": {
			in: "\xEF\xBB\xBF date , amount\r\n1,2\r\n",
			want: &dataset.Table{
				Columns: []string{"date", "amount"},
				Rows:    [][]string{{"1", "2"}},
			},
		},
		"quoted fields": {
			in: "name,note\n\"Doe, Jane\",\"said \"\"hi\"\"\"\n",
			want: &dataset.Table{
				Columns: []string{"name", "note"},
				Rows:    [][]string{{"Doe, Jane", `said "hi"`}},
			},
		},
		"semicolon delimiter": {
			opts: func(o *dataset.Options) { o.Comma = ';' },
			in:   "a;b\n1;2\n",
			want: &dataset.Table{
				Columns: []string{"a", "b"},
				Rows:    [][]string{{"1", "2"}},
			},
		},
		"comments": {
			opts: func(o *dataset.Options) { o.Comment = '#' },
			in:   "# exported\na\n1\n# trailer\n",
			want: &dataset.Table{
				Columns: []string{"a"},
				Rows:    [][]string{{"1"}},
			},
		},
		"empty": {
			in:      "",
			wantErr: dataset.ErrEmptyFile,
		},
		"ragged": {
			in:      "a,b\n1\n",
			wantErr: dataset.ErrParse,
		},
		"invalid delimiter": {
			opts:    func(o *dataset.Options) { o.Comma = '"' },
			in:      "a\n",
			wantErr: dataset.ErrInvalidOptions,
		},
		"comment equals delimiter": {
			opts:    func(o *dataset.Options) { o.Comment = ',' },
			in:      "a\n",
			wantErr: dataset.ErrInvalidOptions,
		},
		"exact size limit": {
			opts: func(o *dataset.Options) { o.MaxSize = 4 },
			in:   "a\n1\n",
			want: &dataset.Table{
				Columns: []string{"a"},
				Rows:    [][]string{{"1"}},
			},
		},
		"over size limit": {
			opts:    func(o *dataset.Options) { o.MaxSize = 4 },
			in:      "a\n1\n2\n",
			wantErr: dataset.ErrTooLarge,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			opts := dataset.DefaultOptions()
			if tc.opts != nil {
				tc.opts(&opts)
			}

			got, err := dataset.Parse(strings.NewReader(tc.in), opts)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRowCount(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 7, 250} {
		var b strings.Builder

		b.WriteString("id,value\n")

		for i := range n {
			b.WriteString(strings.Repeat("x", i%5) + ",1\n")
		}

		got, err := dataset.Parse(strings.NewReader(b.String()), dataset.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, n, got.Len())
		assert.Equal(t, []string{"id", "value"}, got.Columns)
	}
}

func TestTableNumericColumns(t *testing.T) {
	t.Parallel()

	tbl := &dataset.Table{
		Columns: []string{"date", "GHI", "Tamb", "note", "blank", dataset.SourceColumn, "nan"},
		Rows: [][]string{
			{"2024-01-01", "1.5", "20", "ok", "", "7", "NaN"},
			{"2024-01-02", "", "-3e2", "1", "", "8", "NaN"},
			{"2024-01-03", " 4 ", "+Inf", "2", "", "9", ""},
		},
	}

	assert.Equal(t, []string{"GHI"}, tbl.NumericColumns())

	values, rows, err := tbl.Floats("GHI")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 4}, values)
	assert.Equal(t, []int{0, 2}, rows)

	values, rows, err = tbl.Floats("Tamb")
	require.NoError(t, err)
	assert.Equal(t, []float64{20, -300}, values)
	assert.Equal(t, []int{0, 1}, rows)

	_, _, err = tbl.Floats("missing")
	require.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestParseFloat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want float64
		ok   bool
	}{
		"1.5":    {want: 1.5, ok: true},
		" -3e2 ": {want: -300, ok: true},
		"1e308":  {want: 1e308, ok: true},
		"":       {},
		"abc":    {},
		"NaN":    {},
		"inf":    {},
		"-Inf":   {},
		"1e309":  {},
	}

	for cell, tc := range tcs {
		t.Run(cell, func(t *testing.T) {
			t.Parallel()

			got, ok := dataset.ParseFloat(cell)
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.want, got, 0)
		})
	}
}

func TestTableInfiniteColumn(t *testing.T) {
	t.Parallel()

	tbl := &dataset.Table{
		Columns: []string{"country", "x"},
		Rows:    [][]string{{"Benin", "inf"}, {"Benin", "-inf"}},
	}

	assert.Empty(t, tbl.NumericColumns())
}

func TestTableSet(t *testing.T) {
	t.Parallel()

	tbl := &dataset.Table{
		Columns: []string{"a"},
		Rows:    [][]string{{"1"}, {"2"}},
	}

	tbl.SetDefault(dataset.CountryColumn, "Uploaded")
	assert.Equal(t, []string{"a", "country"}, tbl.Columns)
	assert.Equal(t, [][]string{{"1", "Uploaded"}, {"2", "Uploaded"}}, tbl.Rows)

	tbl.SetDefault(dataset.CountryColumn, "Ignored")
	assert.Equal(t, "Uploaded", tbl.Rows[0][1])

	tbl.Set(dataset.CountryColumn, "Benin")
	assert.Equal(t, [][]string{{"1", "Benin"}, {"2", "Benin"}}, tbl.Rows)
}

func TestTableHeadAndClone(t *testing.T) {
	t.Parallel()

	tbl := &dataset.Table{
		Source:  "a.csv",
		Columns: []string{"a"},
		Rows:    [][]string{{"1"}, {"2"}, {"3"}},
	}

	assert.Equal(t, 2, tbl.Head(2).Len())
	assert.Equal(t, 3, tbl.Head(10).Len())
	assert.Equal(t, 3, tbl.Head(-1).Len())
	assert.Equal(t, "a.csv", tbl.Head(1).Source)

	c := tbl.Clone()
	c.Rows[0][0] = "changed"
	assert.Equal(t, "1", tbl.Rows[0][0])
}

func TestTableWriteCSV(t *testing.T) {
	t.Parallel()

	in := "name,value\n\"a,b\",1\nc,2\n"

	tbl, err := dataset.Parse(strings.NewReader(in), dataset.DefaultOptions())
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, tbl.WriteCSV(buf))
	assert.Equal(t, in, buf.String())
}

func TestConcat(t *testing.T) {
	t.Parallel()

	a := &dataset.Table{Source: "a.csv", Columns: []string{"x", "y"}, Rows: [][]string{{"1", "2"}}}
	b := &dataset.Table{Source: "b.csv", Columns: []string{"y", "z"}, Rows: [][]string{{"3", "4"}}}

	got := dataset.Concat(a, nil, b)
	assert.Equal(t, []string{"x", "y", "z"}, got.Columns)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"", "3", "4"}}, got.Rows)
	assert.Equal(t, "a.csv, b.csv", got.Source)

	empty := dataset.Concat()
	assert.True(t, empty.Empty())
	assert.Empty(t, empty.Columns)
}

func TestGroupColumn(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		cols []string
		want string
	}{
		"region": {cols: []string{"country", "site", "region"}, want: "region"},
		"site":   {cols: []string{"country", "site"}, want: "site"},
		"none":   {cols: []string{"GHI"}, want: "country"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, dataset.GroupColumn(&dataset.Table{Columns: tc.cols}))
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))

	tbl := dataset.Generate(dataset.GenerateOptions{
		Rows:              200,
		Countries:         []string{"Benin", "Togo"},
		RegionsPerCountry: 3,
	}, rng)

	assert.Equal(t, 200, tbl.Len())
	assert.Equal(t, []string{"country", "region", "site", "GHI", "temperature"}, tbl.Columns)
	assert.Equal(t, []string{"GHI", "temperature"}, tbl.NumericColumns())

	countries, err := tbl.Column("country")
	require.NoError(t, err)

	for _, c := range countries {
		assert.Contains(t, []string{"Benin", "Togo"}, c)
	}

	regions, err := tbl.Column("region")
	require.NoError(t, err)

	for _, r := range regions {
		assert.Contains(t, []string{"Region-1", "Region-2", "Region-3"}, r)
	}

	ghi, _, err := tbl.Floats("GHI")
	require.NoError(t, err)

	for _, v := range ghi {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestGenerateClamps(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 4))

	small := dataset.Generate(dataset.GenerateOptions{Rows: 1, RegionsPerCountry: 0}, rng)
	assert.Equal(t, dataset.MinGenerateRows, small.Len())

	countries, err := small.Column("country")
	require.NoError(t, err)

	for _, c := range countries {
		assert.Contains(t, dataset.DefaultGenerateCountries, c)
	}

	large := dataset.Generate(dataset.GenerateOptions{Rows: 1 << 20}, rng)
	assert.Equal(t, dataset.MaxGenerateRows, large.Len())
}

func TestParseCountries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Benin", "Togo", "Sierraleone"}, dataset.ParseCountries(" benin, TOGO ,, SierraLeone "))
	assert.Empty(t, dataset.ParseCountries(" , "))
}
