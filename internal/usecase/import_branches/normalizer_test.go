package import_branches

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
)

const recordMonday = `{"departmentId": 101, "departmentType": "Department", "departmentName": "Central",
  "isTemporaryClosed": false, "isRegular": true, "fullAddress": "Kyiv, Khreshchatyk 1",
  "address": {"baseCity": "Kyiv", "city": "Kyiv", "detailedAddress": "floor 2",
              "geoLocation": {"lat": 50.4501, "long": 30.5234}},
  "extraServices": ["currency exchange", " "],
  "timeTables": [{"workstation": "department",
                  "workDays": [{"workingDay": "mon", "workFrom": "09:00", "workTo": "18:00",
                                "breaks": [{"breakFrom": "13:00", "breakTo": "14:00"}]}]}],
  "customField": {"nested": [1, 2, 3]}}`

const recordFunday = `{"departmentId": 102, "departmentType": "Department", "departmentName": "Broken",
  "timeTables": [{"workstation": "department",
                  "workDays": [{"workingDay": "funday", "workFrom": "09:00", "workTo": "18:00"}]}]}`

const recordAtm = `{"DepartmentId": 103, "DepartmentType": "банкомат", "DepartmentName": "ATM #3",
  "Address": {"City": "Lviv"}}`

func feed(records ...string) []byte {
	return []byte(`{"list": [` + strings.Join(records, ",\n") + `]}`)
}

func newTestNormalizer() *Normalizer {
	return NewNormalizer(SchedulePolicy{}, "UA")
}

func TestNormalize_SingleRecordScenario(t *testing.T) {
	branches, report, err := newTestNormalizer().Normalize(feed(recordMonday))

	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 0, report.Rejected)

	b := branches[0]
	assert.Equal(t, int64(0), b.ID)
	assert.Equal(t, int64(101), b.ExternalID)
	assert.Equal(t, "Central", b.Name)
	assert.Equal(t, domain.BranchTypeDepartment, b.Type)
	assert.True(t, b.IsRegular)
	assert.Equal(t, []string{"currency exchange"}, b.ExtraServices)

	assert.Equal(t, "Kyiv", b.Address.BaseCity)
	assert.Equal(t, "Kyiv, Khreshchatyk 1", b.Address.FullAddress)
	require.NotNil(t, b.Address.DetailedAddress)
	assert.Equal(t, "floor 2", *b.Address.DetailedAddress)
	assert.InDelta(t, 50.4501, b.Address.Latitude, 1e-9)
	assert.True(t, b.Address.HasLocation())

	require.Len(t, b.Schedules, 1)
	require.Len(t, b.Schedules[0].Days, 1)
	monday := b.Schedules[0].Days[0]
	assert.Equal(t, domain.Monday, monday.Day)
	assert.Equal(t, []domain.Break{{From: "13:00", To: "14:00"}}, monday.Breaks)
	assert.True(t, b.LastUpdated.IsZero())
}

func TestNormalize_UnknownDayRejectsOnlyThatRecord(t *testing.T) {
	branches, report, err := newTestNormalizer().Normalize(feed(recordMonday, recordFunday, recordAtm))

	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, int64(101), branches[0].ExternalID)
	assert.Equal(t, int64(103), branches[1].ExternalID)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].Index)
	assert.Equal(t, int64(102), report.Failures[0].DepartmentID)
	assert.Equal(t, domain.FailureUnknownDayName, report.Failures[0].Kind)
	assert.Contains(t, report.Failures[0].Message, "funday")
}

func TestNormalize_PascalCaseAndMissingGeo(t *testing.T) {
	branches, _, err := newTestNormalizer().Normalize([]byte(`{"List": [` + recordAtm + `]}`))

	require.NoError(t, err)
	require.Len(t, branches, 1)
	b := branches[0]
	assert.Equal(t, domain.BranchTypeAtm, b.Type)
	assert.Equal(t, "Lviv", b.Address.City)
	assert.Equal(t, "Lviv", b.Address.BaseCity)
	assert.Equal(t, 0.0, b.Address.Latitude)
	assert.Equal(t, 0.0, b.Address.Longitude)
	assert.False(t, b.Address.HasLocation())
	assert.Nil(t, b.Address.DetailedAddress)
}

func TestNormalize_PayloadRoundTrip(t *testing.T) {
	branches, _, err := newTestNormalizer().Normalize(feed(recordMonday, recordFunday, recordAtm))
	require.NoError(t, err)

	require.Len(t, branches, 2)
	assert.Equal(t, recordMonday, string(branches[0].Payload))
	assert.Equal(t, recordAtm, string(branches[1].Payload))
}

func TestNormalize_Deterministic(t *testing.T) {
	n := newTestNormalizer()
	payload := feed(recordMonday, recordFunday, recordAtm)

	first, firstReport, err := n.Normalize(payload)
	require.NoError(t, err)
	second, secondReport, err := n.Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstReport, secondReport)
}

func TestNormalize_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"zero records", `{"list": []}`, ErrEmptyImportResult},
		{"missing list", `{}`, ErrEmptyImportResult},
		{"all records rejected", string(feed(recordFunday)), ErrEmptyImportResult},
		{"not json", `<xml/>`, ErrInvalidPayload},
		{"root is array", `[{"departmentId": 1}]`, ErrInvalidPayload},
		{"list is object", `{"list": {"departmentId": 1}}`, ErrInvalidPayload},
		{"empty body", ``, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			branches, _, err := newTestNormalizer().Normalize([]byte(tt.payload))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, branches)
		})
	}
}

func TestNormalize_RecordFailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   domain.FailureKind
	}{
		{
			name:   "unknown department type",
			record: `{"departmentId": 1, "departmentType": "kiosk", "departmentName": "K"}`,
			want:   domain.FailureUnknownDepartmentType,
		},
		{
			name:   "blank name",
			record: `{"departmentId": 2, "departmentType": "atm", "departmentName": "   "}`,
			want:   domain.FailureInvalidRecord,
		},
		{
			name:   "missing type",
			record: `{"departmentId": 3, "departmentName": "No type"}`,
			want:   domain.FailureUnknownDepartmentType,
		},
		{
			name:   "blank type",
			record: `{"departmentId": 3, "departmentType": "  ", "departmentName": "Blank type"}`,
			want:   domain.FailureUnknownDepartmentType,
		},
		{
			name:   "invalid utf-8",
			record: "{\"departmentId\": 11, \"departmentType\": \"atm\", \"departmentName\": \"Bad\xff\"}",
			want:   domain.FailureInvalidRecord,
		},
		{
			name:   "wrong field type",
			record: `{"departmentId": "abc", "departmentType": "atm", "departmentName": "X"}`,
			want:   domain.FailureInvalidRecord,
		},
		{
			name:   "latitude out of range",
			record: `{"departmentId": 4, "departmentType": "atm", "departmentName": "X", "address": {"geoLocation": {"lat": 123, "long": 0}}}`,
			want:   domain.FailureInvalidRecord,
		},
		{
			name: "duplicate workstation",
			record: `{"departmentId": 5, "departmentType": "department", "departmentName": "D",
				"timeTables": [{"workstation": "department", "workDays": []},
				               {"workstation": "Department", "workDays": []}]}`,
			want: domain.FailureDuplicateSchedule,
		},
		{
			name: "empty workstation collides with department",
			record: `{"departmentId": 6, "departmentType": "department", "departmentName": "D",
				"timeTables": [{"workstation": "", "workDays": []},
				               {"workstation": "department", "workDays": []}]}`,
			want: domain.FailureDuplicateSchedule,
		},
		{
			name: "cash desk malformed time",
			record: `{"departmentId": 8, "departmentType": "department", "departmentName": "D",
				"cashDepartments": [{"cashId": 1, "workDays": [{"dayOfWeek": "mon", "workFrom": "9", "workTo": "18:00"}]}]}`,
			want: domain.FailureMalformedTime,
		},
		{
			name: "cash desk duplicate day",
			record: `{"departmentId": 9, "departmentType": "department", "departmentName": "D",
				"cashDepartments": [{"cashId": 1, "workDays": [
					{"dayOfWeek": "mon", "workFrom": "09:00", "workTo": "18:00"},
					{"dayOfWeek": "Понедельник", "workFrom": "09:00", "workTo": "18:00"}]}]}`,
			want: domain.FailureDuplicateWorkingDay,
		},
		{
			name: "overnight day",
			record: `{"departmentId": 10, "departmentType": "department", "departmentName": "D",
				"timeTables": [{"workstation": "department", "workDays": [{"workingDay": "mon", "workFrom": "20:00", "workTo": "02:00"}]}]}`,
			want: domain.FailureInvalidTimeRange,
		},
		{
			name:   "null record",
			record: `null`,
			want:   domain.FailureInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			branches, report, err := newTestNormalizer().Normalize(feed(tt.record, recordAtm))

			require.NoError(t, err)
			require.Len(t, branches, 1)
			require.Len(t, report.Failures, 1)
			assert.Equal(t, tt.want, report.Failures[0].Kind, report.Failures[0].Message)
			assert.Equal(t, 0, report.Failures[0].Index)
		})
	}
}

func TestNormalize_InvalidUTF8KeepsPayloadsValid(t *testing.T) {
	bad := "{\"departmentId\": 11, \"departmentType\": \"atm\", \"departmentName\": \"Bad\xff\"}"

	branches, report, err := newTestNormalizer().Normalize(feed(bad, recordAtm))

	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, int64(103), branches[0].ExternalID)
	assert.True(t, utf8.Valid(branches[0].Payload))
	require.Len(t, report.Failures, 1)
	assert.Equal(t, int64(11), report.Failures[0].DepartmentID)
	assert.Contains(t, report.Failures[0].Message, "invalid UTF-8")
}

func TestNormalize_DuplicateCashDeskDropped(t *testing.T) {
	record := `{"departmentId": 7, "departmentType": "department", "departmentName": "D",
		"cashDepartments": [
			{"cashId": 1, "cashDescription": "first", "workDays": []},
			{"cashId": 2, "cashDescription": "second", "workDays": []},
			{"cashId": 1, "cashDescription": "repeat", "workDays": []}
		]}`

	branches, report, err := newTestNormalizer().Normalize(feed(record, recordAtm))

	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Empty(t, report.Failures)

	desks := branches[0].CashDesks
	require.Len(t, desks, 2)
	assert.Equal(t, "first", desks[0].Description)
	assert.Equal(t, int64(2), desks[1].ExternalID)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, domain.DiagnosticDuplicateCashDesk, report.Diagnostics[0].Kind)
	assert.Equal(t, int64(7), report.Diagnostics[0].DepartmentID)
	assert.Contains(t, report.Diagnostics[0].Message, "cash desk 1")
}

func TestNormalize_CashDesksAndSkippedWorkstation(t *testing.T) {
	record := `{"departmentId": 200, "departmentType": "відділення", "departmentName": "With cash",
		"timeTables": [
			{"workstation": "department", "workDays": [{"workingDay": "tue", "workFrom": "09:00", "workTo": "18:00"}]},
			{"workstation": "CashDepartment", "workDays": [{"workingDay": "tue", "workFrom": "09:00", "workTo": "17:00"}]},
			{"workstation": "consulting", "workDays": [{"workingDay": "wed", "workFrom": "10:00", "workTo": "16:00"}]}
		],
		"cashDepartments": [
			{"cashId": 7, "cashDescription": "Cash desk 7",
			 "workDays": [{"dayOfWeek": "fri", "workFrom": "09:00", "workTo": "17:00",
			               "breaks": [{"breakFrom": "12:00", "breakTo": "12:30"}, {"breakFrom": "18:00", "breakTo": "18:30"}]},
			              {"dayOfWeek": "Mon", "workFrom": "09:00", "workTo": "17:00"}]},
			{"cashId": 8, "cashDescription": "Cash desk 8", "workDays": []}
		]}`

	branches, report, err := newTestNormalizer().Normalize(feed(record))
	require.NoError(t, err)
	require.Len(t, branches, 1)
	b := branches[0]

	require.Len(t, b.Schedules, 2)
	assert.Equal(t, "department", b.Schedules[0].Workstation)
	assert.Equal(t, "consulting", b.Schedules[1].Workstation)

	require.Len(t, b.CashDesks, 2)
	desk := b.CashDesks[0]
	assert.Equal(t, int64(7), desk.ExternalID)
	assert.Equal(t, "Cash desk 7", desk.Description)
	require.Len(t, desk.Days, 2)
	assert.Equal(t, domain.Monday, desk.Days[0].Day)
	assert.Equal(t, domain.Friday, desk.Days[1].Day)
	assert.Equal(t, []domain.Break{{From: "12:00", To: "12:30"}}, desk.Days[1].Breaks)

	require.Len(t, report.Diagnostics, 2)
	assert.Equal(t, domain.DiagnosticSkippedWorkstation, report.Diagnostics[0].Kind)
	assert.Equal(t, domain.DiagnosticInvalidBreakRange, report.Diagnostics[1].Kind)
	assert.Contains(t, report.Diagnostics[1].Message, "cash desk 7")
	assert.Equal(t, int64(200), report.Diagnostics[1].DepartmentID)
}

func TestNormalize_Phones(t *testing.T) {
	record := `{"departmentId": 300, "departmentType": "department", "departmentName": "Phones",
		"phones": ["+380 67 123 4567", "not a phone", ""]}`

	branches, report, err := newTestNormalizer().Normalize(feed(record))
	require.NoError(t, err)
	require.Len(t, branches, 1)

	require.Len(t, branches[0].Phones, 1)
	phone := branches[0].Phones[0]
	assert.NotEmpty(t, phone.OperatorCode)
	assert.Equal(t, "671234567", phone.OperatorCode+phone.Number)
	assert.Equal(t, phone.OperatorCode+" "+phone.Number, phone.FullNumber())

	require.Len(t, report.Diagnostics, 2)
	for _, d := range report.Diagnostics {
		assert.Equal(t, domain.DiagnosticInvalidPhone, d.Kind)
	}
}
