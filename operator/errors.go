package operator

import (
	"errors"

	jg "github.com/thamindumk/jasminegraph"
)

var errInvalidNodeID = errors.New("operator: nodeId missing or not numeric")
var errNoMasterClient = errors.New("operator: ExpandAll needs a remote hop but no master.Client is configured")

func planMalformed(op string, err error) error {
	return jg.Wrap(jg.PlanMalformed, op, err)
}

func storeErr(op string, err error) error {
	return jg.Wrap(jg.StoreIO, op, err)
}

func typeMismatch(op string, err error) error {
	return jg.Wrap(jg.TypeMismatch, op, err)
}
