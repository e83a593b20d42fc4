//go:build !linux

package bench

import "errors"

func dropPageCache() error {
	return errors.New("page cache clearing is only supported on linux")
}
