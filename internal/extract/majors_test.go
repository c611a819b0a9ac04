package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const majorsPage = `
<script>
window.__data = {
  "name": "Example City Marathon",
  "date_start": "2031-09-14",
  "city": "Example City",
  "country": "Exampleland",
  "url": "https://www.worldmarathonmajors.com/example"
};
</script>`

func TestMajorsRacesExtractsLocationFields(t *testing.T) {
	t.Parallel()

	races := MajorsRaces(majorsPage, "https://www.worldmarathonmajors.com")

	require.Len(t, races, 1)
	r := races[0]
	assert.Equal(t, "Example City Marathon", r.Name)
	assert.Equal(t, "2031-09-14", r.StartDate)
	assert.Equal(t, "Example City", r.City)
	assert.Equal(t, "Exampleland", r.Country)
	assert.Equal(t, "https://www.worldmarathonmajors.com/example", r.Website)
	assert.Equal(t, "worldmarathonmajors.com", r.Source)
}

func TestMajorsRacesEventsList(t *testing.T) {
	t.Parallel()

	page := `<script>window.__data = {"events": [
	  {"name": "First Marathon", "date_start": "2031-03-01", "city": "A", "country": "X"},
	  {"name": "Second Marathon", "date_start": "2031-04-01", "city": "B", "country": "Y"},
	  {"name": "Fun Run 10k", "date_start": "2031-05-01"}
	]};</script>`

	races := MajorsRaces(page, "https://www.worldmarathonmajors.com")
	require.Len(t, races, 2, "non-marathons are dropped")
	assert.Equal(t, "First Marathon", races[0].Name)
}

func TestMajorsRacesMalformedBlobRecovered(t *testing.T) {
	t.Parallel()

	// Trailing comma makes this invalid JSON; the per-field recovery still
	// pulls the flat string fields out.
	page := `<script>window.__data = {
	  "name": "Recovered Marathon",
	  "date_start": "2031-09-14",
	  "city": "Example City",
	};</script>`

	races := MajorsRaces(page, "https://www.worldmarathonmajors.com")
	require.Len(t, races, 1)
	assert.Equal(t, "Recovered Marathon", races[0].Name)
	assert.Equal(t, "Example City", races[0].City)
}

func TestRecoverJSONStringValue(t *testing.T) {
	t.Parallel()

	blob := `{"name": "Quoted \"Marathon\"", "url": "https:\/\/x.example", broken`

	assert.Equal(t, `Quoted "Marathon"`, RecoverJSONStringValue(blob, "name"))
	assert.Equal(t, "https://x.example", RecoverJSONStringValue(blob, "url"))
	assert.Equal(t, "", RecoverJSONStringValue(blob, "missing"))
}
