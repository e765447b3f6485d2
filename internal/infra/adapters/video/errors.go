package video

import "errors"

var errNoProvider = errors.New("video: no provider configured")
