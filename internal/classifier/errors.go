package classifier

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from the input table. It is
// raised before any raster work begins.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("classifier: input table is missing column(s): %s",
		strings.Join(e.Missing, ", "))
}

// InvalidOverrideError reports a manual override outside the standard code
// range. The caller made a data-entry mistake; fail loud, never clamp.
type InvalidOverrideError struct {
	StationID string
	Code      int
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("classifier: override for station %q has code %d outside [1,17]",
		e.StationID, e.Code)
}
