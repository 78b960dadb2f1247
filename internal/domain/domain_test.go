package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchDirectory/pkg/ptr"
)

func TestParseDayOfWeek(t *testing.T) {
	tests := []struct {
		input string
		want  DayOfWeek
	}{
		{"monday", Monday},
		{"Mon", Monday},
		{"MO", Monday},
		{"Понеділок", Monday},
		{"пн.", Monday},
		{"Вторник", Tuesday},
		{" wed ", Wednesday},
		{"четвер", Thursday},
		{"П’ятниця", Friday},
		{"пятница", Friday},
		{"Sat", Saturday},
		{"нд", Sunday},
		{"ВС", Sunday},
		{"7", Sunday},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDayOfWeek(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDayOfWeek_CaseInsensitiveForEveryAlias(t *testing.T) {
	for alias, want := range dayAliases {
		for _, variant := range []string{alias, strings.ToUpper(alias), " " + alias + " "} {
			got, ok := ParseDayOfWeek(variant)
			require.True(t, ok, "alias %q", variant)
			assert.Equal(t, want, got, "alias %q", variant)
		}
	}
}

func TestParseDayOfWeek_Unknown(t *testing.T) {
	for _, name := range []string{"funday", "", "0", "8", "weekday"} {
		_, ok := ParseDayOfWeek(name)
		assert.False(t, ok, name)
	}
}

func TestTimeRange_Minutes(t *testing.T) {
	start, end, err := TimeRange{From: "09:00", To: "18:00"}.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 540, start)
	assert.Equal(t, 1080, end)

	overnight := TimeRange{From: "22:00", To: "06:00"}
	assert.True(t, overnight.IsOvernight())
	start, end, err = overnight.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 1320, start)
	assert.Equal(t, 1800, end)
}

func TestAddress_HasLocationAndEqual(t *testing.T) {
	a := Address{BaseCity: "Kyiv", City: "Kyiv", DetailedAddress: ptr.Ptr("office 1"), Latitude: 50.45, Longitude: 30.52}
	b := Address{BaseCity: "Kyiv", City: "Kyiv", DetailedAddress: ptr.Ptr("office 1"), Latitude: 50.45, Longitude: 30.52}

	assert.True(t, a.HasLocation())
	assert.True(t, a.Equal(b))

	b.DetailedAddress = nil
	assert.False(t, a.Equal(b))

	assert.False(t, Address{}.HasLocation())
}

func TestContactPhone_FullNumber(t *testing.T) {
	assert.Equal(t, "67 1234567", ContactPhone{OperatorCode: "67", Number: "1234567"}.FullNumber())
	assert.Equal(t, "1234567", ContactPhone{Number: "1234567"}.FullNumber())
}

func TestBranch_CloneIsDeep(t *testing.T) {
	orig := &Branch{
		Name:    "Main",
		Type:    BranchTypeDepartment,
		Address: Address{DetailedAddress: ptr.Ptr("floor 2")},
		Schedules: []Schedule{{
			Workstation: DefaultWorkstation,
			Days: []WorkingDay{{
				Day:    Monday,
				Hours:  TimeRange{From: "09:00", To: "18:00"},
				Breaks: []Break{{From: "13:00", To: "14:00"}},
			}},
		}},
		CashDesks: []CashDesk{{ExternalID: 1, Days: []WorkingDay{{Day: Tuesday}}}},
		Payload:   json.RawMessage(`{"a":1}`),
	}

	clone := orig.Clone()
	clone.Schedules[0].Days[0].Breaks[0].From = "12:00"
	*clone.Address.DetailedAddress = "floor 3"
	clone.CashDesks[0].Days[0].Day = Friday
	clone.Payload[1] = 'b'

	assert.Equal(t, "13:00", orig.Schedules[0].Days[0].Breaks[0].From.String())
	assert.Equal(t, "floor 2", *orig.Address.DetailedAddress)
	assert.Equal(t, Tuesday, orig.CashDesks[0].Days[0].Day)
	assert.Equal(t, `{"a":1}`, string(orig.Payload))
}

func TestBranchFilter_Matches(t *testing.T) {
	atm := BranchTypeAtm
	kyiv := "Kyiv"
	b := &Branch{Type: BranchTypeAtm, Address: Address{BaseCity: "Kyiv"}, IsTemporaryClosed: true}

	assert.False(t, BranchFilter{}.Matches(b))
	assert.True(t, BranchFilter{IncludeClosed: true}.Matches(b))
	assert.True(t, BranchFilter{Type: &atm, BaseCity: &kyiv, IncludeClosed: true}.Matches(b))

	dep := BranchTypeDepartment
	assert.False(t, BranchFilter{Type: &dep, IncludeClosed: true}.Matches(b))
}

func TestParseBranchType(t *testing.T) {
	got, ok := ParseBranchType("atm")
	require.True(t, ok)
	assert.Equal(t, BranchTypeAtm, got)

	_, ok = ParseBranchType("kiosk")
	assert.False(t, ok)
}
