package listing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-json"
	"github.com/inoxlang/quadc/internal/logs"
	"github.com/inoxlang/quadc/internal/utils"
	"github.com/klauspost/compress/zstd"
	"github.com/maruel/natural"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"
)

const (
	DEFAULT_OPEN_TIMEOUT = time.Second
	ARCHIVE_FILE_PERM    = 0o600

	//version of the layout of the archive, it is stored in the meta bucket when the archive is created.
	ARCHIVE_FORMAT_VERSION = "1.0.0"

	//archives whose version does not satisfy this constraint cannot be opened.
	SUPPORTED_ARCHIVE_FORMATS = "^1.0.0"
)

var (
	BBOLT_LISTINGS_BUCKET = []byte("listings")
	BBOLT_META_BUCKET     = []byte("meta")
	FORMAT_VERSION_KEY    = []byte("format-version")

	ErrArchiveClosed            = errors.New("listing archive is closed")
	ErrListingNotFound          = errors.New("listing not found")
	ErrListingAlreadyStored     = errors.New("listing already stored")
	ErrUnsupportedArchiveFormat = errors.New("unsupported listing archive format")

	supportedFormats = utils.Must(semver.NewConstraint(SUPPORTED_ARCHIVE_FORMATS))

	//entries are stored as zstd-compressed JSON.
	entryEncoder = utils.Must(zstd.NewWriter(nil))
	entryDecoder = utils.Must(zstd.NewReader(nil))
)

// Entry is an archived listing.
type Entry struct {
	ID        ulid.ULID `json:"id"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
	Lines     []string  `json:"lines"`
}

// Archive stores the listings of compilation units in a bbolt database, entries are keyed by the ULID of the unit.
type Archive struct {
	db            *bbolt.DB
	path          string
	formatVersion *semver.Version
	logger        zerolog.Logger
}

// Open opens the archive at path, the file and its parent directories are created if necessary.
func Open(path string, logger zerolog.Logger) (*Archive, error) {
	logger = logs.ChildLoggerForSource(logger, logs.ARCHIVE_SRC_NAME)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create the directory of the listing archive: %w", err)
	}

	db, err := bbolt.Open(path, ARCHIVE_FILE_PERM, &bbolt.Options{Timeout: DEFAULT_OPEN_TIMEOUT})
	if err != nil {
		return nil, fmt.Errorf("failed to open the listing archive %s: %w", path, err)
	}

	var formatVersion *semver.Version

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(BBOLT_LISTINGS_BUCKET); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(BBOLT_META_BUCKET)
		if err != nil {
			return err
		}

		storedVersion := meta.Get(FORMAT_VERSION_KEY)
		if storedVersion == nil {
			storedVersion = []byte(ARCHIVE_FORMAT_VERSION)
			if err := meta.Put(FORMAT_VERSION_KEY, storedVersion); err != nil {
				return err
			}
		}

		formatVersion, err = semver.NewVersion(string(storedVersion))
		if err != nil {
			return fmt.Errorf("%w: invalid version %q: %w", ErrUnsupportedArchiveFormat, storedVersion, err)
		}
		if !supportedFormats.Check(formatVersion) {
			return fmt.Errorf("%w: version %s does not satisfy %s", ErrUnsupportedArchiveFormat, formatVersion, SUPPORTED_ARCHIVE_FORMATS)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug().Str("path", path).Stringer("format", formatVersion).Msg("listing archive opened")

	return &Archive{
		db:            db,
		path:          path,
		formatVersion: formatVersion,
		logger:        logger,
	}, nil
}

func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) FormatVersion() *semver.Version {
	return a.formatVersion
}

func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	a.logger.Debug().Msg("listing archive closed")
	return err
}

// Save stores the listing of a unit, a given unit ID can only be stored once.
func (a *Archive) Save(unitName string, id ulid.ULID, lines []string) (Entry, error) {
	if a.db == nil {
		return Entry{}, ErrArchiveClosed
	}

	entry := Entry{
		ID:        id,
		Unit:      unitName,
		CreatedAt: ulid.Time(id.Time()).UTC(),
		Lines:     lines,
	}
	if entry.Lines == nil {
		entry.Lines = []string{}
	}

	serialized, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, err
	}
	compressed := entryEncoder.EncodeAll(serialized, nil)

	err = a.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(BBOLT_LISTINGS_BUCKET)
		if bucket.Get(id[:]) != nil {
			return fmt.Errorf("%w: %s", ErrListingAlreadyStored, id)
		}
		return bucket.Put(id[:], compressed)
	})
	if err != nil {
		return Entry{}, err
	}

	a.logger.Debug().Str("unit", unitName).Stringer("unitID", id).Int("lines", len(lines)).Msg("listing archived")
	return entry, nil
}

func (a *Archive) Get(id ulid.ULID) (Entry, error) {
	if a.db == nil {
		return Entry{}, ErrArchiveClosed
	}

	var entry Entry
	err := a.db.View(func(tx *bbolt.Tx) error {
		compressed := tx.Bucket(BBOLT_LISTINGS_BUCKET).Get(id[:])
		if compressed == nil {
			return fmt.Errorf("%w: %s", ErrListingNotFound, id)
		}
		var err error
		entry, err = decodeEntry(compressed)
		return err
	})
	return entry, err
}

// List returns all the archived listings sorted by unit name (natural order) then by ID.
func (a *Archive) List() ([]Entry, error) {
	if a.db == nil {
		return nil, ErrArchiveClosed
	}

	var entries []Entry
	err := a.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(BBOLT_LISTINGS_BUCKET).ForEach(func(k, v []byte) error {
			entry, err := decodeEntry(v)
			if err != nil {
				return fmt.Errorf("invalid archived listing %x: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.Unit != b.Unit {
			if natural.Less(a.Unit, b.Unit) {
				return -1
			}
			return 1
		}
		return a.ID.Compare(b.ID)
	})
	return entries, nil
}

// Delete removes an archived listing.
func (a *Archive) Delete(id ulid.ULID) error {
	if a.db == nil {
		return ErrArchiveClosed
	}

	return a.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(BBOLT_LISTINGS_BUCKET)
		if bucket.Get(id[:]) == nil {
			return fmt.Errorf("%w: %s", ErrListingNotFound, id)
		}
		return bucket.Delete(id[:])
	})
}

func decodeEntry(compressed []byte) (Entry, error) {
	serialized, err := entryDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	err = json.Unmarshal(serialized, &entry)
	return entry, err
}
