//go:build !systemd_nojournal && systemd_v245

package journal

import (
	"git.gensokyo.uk/security/systemd"
	"git.gensokyo.uk/security/systemd/internal/sd"
)

// namespaceNative is implemented by [native] when built against systemd v245 or later.
type namespaceNative interface {
	openNamespace(namespace string, flags int32) (sd.Journal, int32)
}

func (direct) openNamespace(namespace string, flags int32) (sd.Journal, int32) {
	return sd.JournalOpenNamespace(namespace, flags)
}

// OpenNamespace opens the journal files of namespace.
// An empty namespace opens the default namespace.
func OpenNamespace(namespace string, flags OpenFlag) (*Reader, error) {
	return openNamespace(direct{}, namespace, flags)
}

func openNamespace(k interface {
	native
	namespaceNative
}, namespace string, flags OpenFlag) (*Reader, error) {
	const op = "sd_journal_open_namespace"
	if err := systemd.CheckString(op, namespace); err != nil {
		return nil, err
	}
	j, r := k.openNamespace(namespace, int32(flags))
	return newReader(k, op, j, r)
}
