//go:build linux

package bench

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const dropCachesPath = "/proc/sys/vm/drop_caches"

// dropPageCache flushes dirty pages and asks the kernel to drop the
// clean page cache, dentries and inodes. Writing drop_caches requires
// root.
func dropPageCache() error {
	unix.Sync()

	if err := os.WriteFile(dropCachesPath, []byte("3\n"), 0o200); err != nil {
		return fmt.Errorf("drop page cache: %w", err)
	}

	return nil
}
