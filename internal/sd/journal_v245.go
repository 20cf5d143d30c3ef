//go:build !systemd_nojournal && systemd_v245

package sd

/*
#include <stdlib.h>
#include <systemd/sd-journal.h>
*/
import "C"

// HaveV245 is whether functions introduced in systemd v245 are available.
const HaveV245 = true

// JournalOpenNamespace calls sd_journal_open_namespace.
// An empty namespace opens the default namespace.
func JournalOpenNamespace(namespace string, flags int32) (Journal, int32) {
	p := cstr(namespace, true)
	defer freeStr(p)

	var j *C.sd_journal
	r := C.sd_journal_open_namespace(&j, p, C.int(flags))
	return Journal(j), int32(r)
}
