//go:build !systemd_nojournal

package journal

import (
	"errors"
	"io"
	"math"
	"strconv"
	"time"
	"unsafe"

	"git.gensokyo.uk/security/systemd"
	"git.gensokyo.uk/security/systemd/id128"
	"git.gensokyo.uk/security/systemd/internal/sd"
)

// OpenFlag is passed to the functions opening a [Reader].
type OpenFlag int32

const (
	// LocalOnly only opens journal files generated on the local machine.
	LocalOnly OpenFlag = 1 << iota
	// RuntimeOnly only opens volatile journal files.
	RuntimeOnly
	// System opens journal files of system services and the kernel.
	System
	// CurrentUser opens journal files of the current user.
	CurrentUser
	// OSRoot treats the directory passed to [OpenDirectory] as an OS root.
	OSRoot
)

// WakeEvent is returned by [Reader.Wait].
type WakeEvent int

const (
	// Nop means the journal did not change.
	Nop WakeEvent = iota
	// Append means entries were appended to the journal.
	Append
	// Invalidate means journal files were added or removed.
	Invalidate
)

func (e WakeEvent) String() string {
	switch e {
	case Nop:
		return "nop"
	case Append:
		return "append"
	case Invalidate:
		return "invalidate"
	default:
		return "event(" + strconv.Itoa(int(e)) + ")"
	}
}

// Entry holds every field of a journal entry. Values are held verbatim and
// may contain arbitrary bytes.
type Entry map[string]string

// Reader is a cursor over journal entries. It owns an sd_journal handle
// released by Close. A Reader must not be used concurrently.
type Reader struct {
	k native
	j sd.Journal
}

// Open opens the journal files of the local host.
func Open(flags OpenFlag) (*Reader, error) { return open(direct{}, flags) }

func open(k native, flags OpenFlag) (*Reader, error) {
	j, r := k.open(int32(flags))
	return newReader(k, "sd_journal_open", j, r)
}

// OpenDirectory opens the journal files in directory path.
func OpenDirectory(path string, flags OpenFlag) (*Reader, error) {
	return openDirectory(direct{}, path, flags)
}

func openDirectory(k native, path string, flags OpenFlag) (*Reader, error) {
	const op = "sd_journal_open_directory"
	if err := systemd.CheckString(op, path); err != nil {
		return nil, err
	}
	j, r := k.openDirectory(path, int32(flags))
	return newReader(k, op, j, r)
}

// OpenFiles opens the journal files at paths.
func OpenFiles(paths []string, flags OpenFlag) (*Reader, error) {
	return openFiles(direct{}, paths, flags)
}

func openFiles(k native, paths []string, flags OpenFlag) (*Reader, error) {
	const op = "sd_journal_open_files"
	if err := systemd.CheckString(op, paths...); err != nil {
		return nil, err
	}
	j, r := k.openFiles(paths, int32(flags))
	return newReader(k, op, j, r)
}

// newReader returns a [Reader] positioned at the head of the journal for
// the handle returned by op. The handle is released on any error.
func newReader(k native, op string, j sd.Journal, r int32) (*Reader, error) {
	if err := systemd.Check(op, r); err != nil {
		return nil, err
	}
	if j == nil {
		return nil, &systemd.ConversionError{Op: op, Err: systemd.ErrNull}
	}

	rd := &Reader{k: k, j: j}
	if err := rd.SeekHead(); err != nil {
		return nil, errors.Join(err, rd.Close())
	}
	return rd, nil
}

// Use opens the journal, calls f and closes the journal regardless of how f returns.
func Use(flags OpenFlag, f func(r *Reader) error) error {
	r, err := Open(flags)
	if err != nil {
		return err
	}
	return use(r, f)
}

func use(r *Reader, f func(r *Reader) error) (err error) {
	defer func() { err = errors.Join(err, r.Close()) }()
	return f(r)
}

// Close releases the underlying handle. Every later call on r,
// including Close, returns [systemd.ErrClosed].
func (r *Reader) Close() error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	r.j = nil
	r.k.close(j)
	return nil
}

func (r *Reader) handle() (sd.Journal, error) {
	if r == nil || r.j == nil {
		return nil, systemd.ErrClosed
	}
	return r.j, nil
}

// step maps the result of a function advancing the read pointer.
func (r *Reader) step(op string, f func(k native, j sd.Journal) int32) (bool, error) {
	j, err := r.handle()
	if err != nil {
		return false, err
	}
	return systemd.Bool(op, f(r.k, j))
}

// Next advances the read pointer by one entry. It returns false
// once the end of the journal is reached.
func (r *Reader) Next() (bool, error) { return r.step("sd_journal_next", native.next) }

// Previous moves the read pointer back by one entry. It returns false
// once the head of the journal is reached.
func (r *Reader) Previous() (bool, error) { return r.step("sd_journal_previous", native.previous) }

// NextSkip advances the read pointer by up to skip entries and returns the number of entries skipped.
func (r *Reader) NextSkip(skip uint64) (int, error) {
	j, err := r.handle()
	if err != nil {
		return 0, err
	}
	return systemd.Result("sd_journal_next_skip", r.k.nextSkip(j, skip))
}

// PreviousSkip moves the read pointer back by up to skip entries and returns the number of entries skipped.
func (r *Reader) PreviousSkip(skip uint64) (int, error) {
	j, err := r.handle()
	if err != nil {
		return 0, err
	}
	return systemd.Result("sd_journal_previous_skip", r.k.previousSkip(j, skip))
}

// ReadEntry advances the read pointer and returns the entry it lands on.
// It returns [io.EOF] at the end of the journal.
func (r *Reader) ReadEntry() (Entry, error) {
	if ok, err := r.Next(); err != nil {
		return nil, err
	} else if !ok {
		return nil, io.EOF
	}
	return r.Entry()
}

// Entry returns every field of the current entry.
func (r *Reader) Entry() (Entry, error) {
	const op = "sd_journal_enumerate_data"
	j, err := r.handle()
	if err != nil {
		return nil, err
	}

	r.k.restartData(j)
	e := make(Entry)
	for {
		data, ret := r.k.enumerateData(j)
		if n, err := systemd.Result(op, ret); err != nil {
			return nil, err
		} else if n == 0 {
			return e, nil
		}

		key, value, err := systemd.Field(op, data)
		if err != nil {
			return nil, err
		}
		e[key] = value
	}
}

// GetData returns the value of field in the current entry.
// A missing field is reported as an error matching [os.ErrNotExist].
func (r *Reader) GetData(field string) (string, error) {
	const op = "sd_journal_get_data"
	j, err := r.handle()
	if err != nil {
		return "", err
	}
	if err = systemd.CheckString(op, field); err != nil {
		return "", err
	}

	data, ret := r.k.getData(j, field)
	if err = systemd.Check(op, ret); err != nil {
		return "", err
	}
	_, value, err := systemd.Field(op, data)
	return value, err
}

// SetDataThreshold sets the size above which field values are truncated. Zero disables truncation.
func (r *Reader) SetDataThreshold(sz uint64) error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_journal_set_data_threshold", r.k.setDataThreshold(j, sz))
}

// SeekHead seeks to the beginning of the journal.
func (r *Reader) SeekHead() error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_journal_seek_head", r.k.seekHead(j))
}

// SeekTail seeks to the end of the journal.
func (r *Reader) SeekTail() error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_journal_seek_tail", r.k.seekTail(j))
}

// SeekRealtime seeks to the entry closest to t.
func (r *Reader) SeekRealtime(t time.Time) error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_journal_seek_realtime_usec", r.k.seekRealtimeUsec(j, uint64(t.UnixMicro())))
}

// SeekMonotonic seeks to the entry closest to the monotonic timestamp d of boot.
func (r *Reader) SeekMonotonic(boot id128.ID, d time.Duration) error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_journal_seek_monotonic_usec", r.k.seekMonotonicUsec(j, sd.ID128(boot), uint64(d.Microseconds())))
}

// SeekCursor seeks to the entry identified by cursor.
func (r *Reader) SeekCursor(cursor string) error {
	const op = "sd_journal_seek_cursor"
	j, err := r.handle()
	if err != nil {
		return err
	}
	if err = systemd.CheckString(op, cursor); err != nil {
		return err
	}
	return systemd.Check(op, r.k.seekCursor(j, cursor))
}

// Cursor returns the cursor identifying the current entry.
func (r *Reader) Cursor() (string, error) {
	const op = "sd_journal_get_cursor"
	j, err := r.handle()
	if err != nil {
		return "", err
	}

	p, ret := r.k.getCursor(j)
	if err = systemd.Check(op, ret); err != nil {
		return "", err
	}
	if p != nil {
		defer r.k.free(unsafe.Pointer(p))
	}
	return systemd.String(op, p.Bytes())
}

// TestCursor returns whether the current entry is identified by cursor.
func (r *Reader) TestCursor(cursor string) (bool, error) {
	const op = "sd_journal_test_cursor"
	j, err := r.handle()
	if err != nil {
		return false, err
	}
	if err = systemd.CheckString(op, cursor); err != nil {
		return false, err
	}
	return systemd.Bool(op, r.k.testCursor(j, cursor))
}

// Realtime returns the wallclock timestamp of the current entry.
func (r *Reader) Realtime() (time.Time, error) {
	j, err := r.handle()
	if err != nil {
		return time.Time{}, err
	}
	usec, ret := r.k.getRealtimeUsec(j)
	if err = systemd.Check("sd_journal_get_realtime_usec", ret); err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(int64(usec)), nil
}

// Monotonic returns the monotonic timestamp of the current entry and the boot it belongs to.
func (r *Reader) Monotonic() (time.Duration, id128.ID, error) {
	j, err := r.handle()
	if err != nil {
		return 0, id128.ID{}, err
	}
	usec, boot, ret := r.k.getMonotonicUsec(j)
	if err = systemd.Check("sd_journal_get_monotonic_usec", ret); err != nil {
		return 0, id128.ID{}, err
	}
	return time.Duration(usec) * time.Microsecond, id128.ID(boot), nil
}

// AddMatch adds a FIELD=value match. Matches on different fields are
// combined with AND, matches on the same field with OR.
func (r *Reader) AddMatch(match string) error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_journal_add_match", r.k.addMatch(j, []byte(match)))
}

// AddDisjunction combines the matches added so far with those added later using OR.
func (r *Reader) AddDisjunction() error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_journal_add_disjunction", r.k.addDisjunction(j))
}

// AddConjunction combines the matches added so far with those added later using AND.
func (r *Reader) AddConjunction() error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	return systemd.Check("sd_journal_add_conjunction", r.k.addConjunction(j))
}

// FlushMatches removes every match.
func (r *Reader) FlushMatches() error {
	j, err := r.handle()
	if err != nil {
		return err
	}
	r.k.flushMatches(j)
	return nil
}

// Wait blocks until the journal changes or timeout elapses.
// A negative timeout waits indefinitely.
func (r *Reader) Wait(timeout time.Duration) (WakeEvent, error) {
	j, err := r.handle()
	if err != nil {
		return Nop, err
	}
	usec := uint64(math.MaxUint64)
	if timeout >= 0 {
		usec = uint64(timeout.Microseconds())
	}
	n, err := systemd.Result("sd_journal_wait", r.k.wait(j, usec))
	return WakeEvent(n), err
}

// Usage returns the disk space in bytes used by the open journal files.
func (r *Reader) Usage() (uint64, error) {
	j, err := r.handle()
	if err != nil {
		return 0, err
	}
	n, ret := r.k.getUsage(j)
	if err = systemd.Check("sd_journal_get_usage", ret); err != nil {
		return 0, err
	}
	return n, nil
}

// Unique returns every distinct value of field across the open journal files.
func (r *Reader) Unique(field string) ([]string, error) {
	const op = "sd_journal_enumerate_unique"
	j, err := r.handle()
	if err != nil {
		return nil, err
	}
	if err = systemd.CheckString("sd_journal_query_unique", field); err != nil {
		return nil, err
	}
	if err = systemd.Check("sd_journal_query_unique", r.k.queryUnique(j, field)); err != nil {
		return nil, err
	}

	r.k.restartUnique(j)
	var values []string
	for {
		data, ret := r.k.enumerateUnique(j)
		if n, err := systemd.Result(op, ret); err != nil {
			return nil, err
		} else if n == 0 {
			return values, nil
		}

		_, value, err := systemd.Field(op, data)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
}
