package api

import (
	"encoding/json/v2"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getFixturePath returns the path to the testdata directory within the server repo.
// Client tests embed matching JSON strings to verify parsing compatibility.
func getFixturePath(t *testing.T) string {
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get caller info")

	// Navigate from internal/api to testdata/envelope at the repo root
	serverDir := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(serverDir, "testdata", "envelope")
}

func loadFixture(t *testing.T, name string) map[string]any {
	t.Helper()

	fixtureBytes, err := os.ReadFile(filepath.Join(getFixturePath(t), name))
	require.NoError(t, err, "Failed to read fixture file - contract tests require shared fixtures")

	var fixture map[string]any
	require.NoError(t, json.Unmarshal(fixtureBytes, &fixture))
	return fixture
}

func roundTrip(t *testing.T, v any) map[string]any {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// TestEnvelopeContract_SuccessMatchesFixture verifies the server produces
// exactly the same JSON structure as defined in the shared fixture.
func TestEnvelopeContract_SuccessMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "success.json")

	data := map[string]string{"id": "test-123", "name": "Test Item"}
	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	serverOutput := roundTrip(t, result)

	assert.Equal(t, expected["v"], serverOutput["v"], "Version field 'v' must match fixture")
	assert.Equal(t, expected["success"], serverOutput["success"], "Success field must match fixture")
	assert.Equal(t, expected["data"], serverOutput["data"], "Data field must match fixture")

	// Verify no unexpected fields
	for key := range serverOutput {
		assert.Contains(t, expected, key, "Server output contains unexpected field: %s", key)
	}
}

// TestEnvelopeContract_SuccessNullDataMatchesFixture verifies success responses
// without data match the fixture structure. Data is present and null, never
// omitted.
func TestEnvelopeContract_SuccessNullDataMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "success_null_data.json")

	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	serverOutput := roundTrip(t, result)

	assert.Equal(t, expected["v"], serverOutput["v"], "Version field must match")
	assert.Equal(t, expected["success"], serverOutput["success"], "Success field must match")
	assert.Contains(t, serverOutput, "data", "Data key must be present even when null")
	assert.Nil(t, serverOutput["data"], "Data must be null")
}

// TestEnvelopeContract_ErrorMatchesFixture verifies error responses
// match the fixture structure.
func TestEnvelopeContract_ErrorMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "error.json")

	result, err := EnvelopeTransformer(nil, "404", &APIError{
		status:  404,
		Code:    "NOT_FOUND",
		Message: "Resource not found",
	})
	require.NoError(t, err)

	serverOutput := roundTrip(t, result)

	assert.Equal(t, expected["v"], serverOutput["v"], "Version field must match")
	assert.Equal(t, expected["success"], serverOutput["success"], "Success must be false")
	assert.Equal(t, expected["error"], serverOutput["error"], "Error object must match fixture")
}

// TestEnvelopeContract_ErrorWithDetailsMatchesFixture verifies detailed error
// responses with code/message/details match the fixture structure.
func TestEnvelopeContract_ErrorWithDetailsMatchesFixture(t *testing.T) {
	expected := loadFixture(t, "error_with_details.json")

	result, err := EnvelopeTransformer(nil, "409", &APIError{
		status:  409,
		Code:    "CONFLICT",
		Message: "Entity already exists",
		Details: map[string]string{"existing_id": "abc-123"},
	})
	require.NoError(t, err)

	serverOutput := roundTrip(t, result)

	assert.Equal(t, expected["v"], serverOutput["v"], "Version field must match")
	assert.Equal(t, expected["success"], serverOutput["success"], "Success must be false")

	errObj, ok := serverOutput["error"].(map[string]any)
	require.True(t, ok, "Error must be an object")
	assert.Equal(t, "CONFLICT", errObj["code"], "Code must survive the envelope")
	assert.Equal(t, "Entity already exists", errObj["message"], "Message must survive the envelope")
	assert.Equal(t, expected["error"], serverOutput["error"], "Error object must match fixture")
}

// TestEnvelopeContract_StatusCodeAloneMarksError verifies that a 4xx status
// selects the error envelope even when the body is not a StatusError.
func TestEnvelopeContract_StatusCodeAloneMarksError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "422", map[string]string{"oops": "bad input"})
	require.NoError(t, err)

	serverOutput := roundTrip(t, result)

	assert.Equal(t, false, serverOutput["success"])
	assert.Contains(t, serverOutput, "error")
	assert.NotContains(t, serverOutput, "data")
}

// TestEnvelopeContract_VersionFieldName verifies the version field is named exactly 'v'.
// This is critical - if renamed to 'version', clients will break silently.
func TestEnvelopeContract_VersionFieldName(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)

	serverOutput := roundTrip(t, result)

	// CRITICAL: Field must be 'v', not 'version' or anything else
	assert.Contains(t, serverOutput, "v", "Must use 'v' as version field name")
	assert.NotContains(t, serverOutput, "version", "Must NOT use 'version' as field name")
	assert.NotContains(t, serverOutput, "Version", "Must NOT use 'Version' as field name")
}
