package interpreter

import "errors"

// errRevert is the sentinel handlers return from REVERT; terminate()
// recognizes it specially since Reverted (unlike every other terminal
// state) keeps gas_left and discards only the refund.
var errRevert = errors.New("interpreter: revert")
