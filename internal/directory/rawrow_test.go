package directory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRow(t *testing.T, raw string) Listing {
	t.Helper()
	var row rawRow
	require.NoError(t, json.Unmarshal([]byte(raw), &row))
	return row.toListing()
}

func TestRawRowCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLat string
		wantLng string
	}{
		{
			name:    "numeric pair preferred",
			raw:     `{"id":1,"latitude":33.749,"longitude":-84.388,"lat":"0","lng":"0"}`,
			wantLat: "33.749",
			wantLng: "-84.388",
		},
		{
			name:    "legacy strings as fallback",
			raw:     `{"id":1,"lat":" 33.749 ","lng":"-84.388"}`,
			wantLat: "33.749",
			wantLng: "-84.388",
		},
		{
			name:    "legacy numbers coerced",
			raw:     `{"id":1,"lat":33.749,"lng":-84.388}`,
			wantLat: "33.749",
			wantLng: "-84.388",
		},
		{
			name:    "half a numeric pair is ignored",
			raw:     `{"id":1,"latitude":33.749,"lat":"32.1","lng":"-81.2"}`,
			wantLat: "32.1",
			wantLng: "-81.2",
		},
		{
			name:    "nothing at all",
			raw:     `{"id":1}`,
			wantLat: "",
			wantLng: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := decodeRow(t, tt.raw)
			assert.Equal(t, tt.wantLat, l.Lat)
			assert.Equal(t, tt.wantLng, l.Lng)
		})
	}
}

func TestRawRowTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{name: "array of numbers", raw: `{"tags":[1,2,3]}`, want: []int64{1, 2, 3}},
		{name: "array of strings", raw: `{"tags":["1","2"]}`, want: []int64{1, 2}},
		{name: "encoded array in string", raw: `{"tags":"[4,5]"}`, want: []int64{4, 5}},
		{name: "comma separated", raw: `{"tags":"6, 7 ,8"}`, want: []int64{6, 7, 8}},
		{name: "bare number", raw: `{"tags":9}`, want: []int64{9}},
		{name: "numeric string", raw: `{"tags":"9"}`, want: []int64{9}},
		{name: "null", raw: `{"tags":null}`, want: nil},
		{name: "empty string", raw: `{"tags":""}`, want: nil},
		{name: "garbage entries skipped", raw: `{"tags":["1","x",2]}`, want: []int64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := decodeRow(t, tt.raw)
			assert.Equal(t, tt.want, l.TagIDs)
		})
	}
}

func TestRawRowHours(t *testing.T) {
	l := decodeRow(t, `{"hours":{"mon":"9-5"}}`)
	assert.Equal(t, map[string]any{"mon": "9-5"}, map[string]any(l.Hours))

	l = decodeRow(t, `{"hours":"{\"tue\":\"10-6\"}"}`)
	assert.Equal(t, map[string]any{"tue": "10-6"}, map[string]any(l.Hours))

	l = decodeRow(t, `{"hours":"closed on sundays"}`)
	assert.Nil(t, l.Hours)
}

func TestRawRowPhotos(t *testing.T) {
	l := decodeRow(t, `{"photos":["a.jpg","b.jpg"]}`)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, l.Photos)

	l = decodeRow(t, `{"photos":"[\"c.jpg\"]"}`)
	assert.Equal(t, []string{"c.jpg"}, l.Photos)

	l = decodeRow(t, `{"photos":"d.jpg"}`)
	assert.Equal(t, []string{"d.jpg"}, l.Photos)

	l = decodeRow(t, `{"photos":null}`)
	assert.Nil(t, l.Photos)
}

func TestRawRowZipAndTrimming(t *testing.T) {
	l := decodeRow(t, `{"id":2,"name":"  Corner Store ","city":" Boise ","state":" Idaho","zip":83702}`)

	assert.Equal(t, "Corner Store", l.Name)
	assert.Equal(t, "Boise", l.City)
	assert.Equal(t, "Idaho", l.State)
	assert.Equal(t, "83702", l.Zip)
}
