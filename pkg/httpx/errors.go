package httpx

import "errors"

var errTrailingData = errors.New("httpx: unexpected data after JSON body")
