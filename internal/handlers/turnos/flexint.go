package turnos

import (
	"bytes"
	"fmt"
	"strconv"
)

// FlexInt accepts both JSON numbers and numeric strings, the way the SPA
// has always sent turno counts ("5" and 5 are equivalent).
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "null" || s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = FlexInt(v)
	return nil
}
