//go:build systemd_nojournal || !systemd_v245

package sd

// HaveV245 is whether functions introduced in systemd v245 are available.
const HaveV245 = false
