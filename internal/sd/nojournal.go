//go:build systemd_nojournal

package sd

// HaveJournal is whether the journal functions are available.
const HaveJournal = false
