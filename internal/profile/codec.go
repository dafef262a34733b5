package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects the on-disk representation of a snapshot.
type Encoding uint8

const (
	EncodingMsgpack Encoding = iota
	EncodingJSON
)

func (e Encoding) String() string {
	switch e {
	case EncodingMsgpack:
		return "msgpack"
	case EncodingJSON:
		return "json"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// EncodingFor picks the encoding from a file extension: .json, or .msgpack / .mp.
func EncodingFor(path string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return EncodingJSON, nil
	case ".msgpack", ".mp":
		return EncodingMsgpack, nil
	default:
		return 0, fmt.Errorf("profile: cannot infer snapshot encoding from %q (use .json, .msgpack or .mp)", path)
	}
}

// Decode reads one snapshot from r and validates it.
func Decode(r io.Reader, enc Encoding) (*Snapshot, error) {
	var snap Snapshot
	var err error
	switch enc {
	case EncodingJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&snap)
	case EncodingMsgpack:
		err = msgpack.NewDecoder(r).Decode(&snap)
	default:
		return nil, fmt.Errorf("profile: unknown encoding %v", enc)
	}
	if err != nil {
		return nil, fmt.Errorf("profile: decode %s: %w", enc, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Encode writes snap to w. The schema field is stamped with SchemaVersion.
func Encode(w io.Writer, snap *Snapshot, enc Encoding) error {
	if snap == nil {
		return errors.New("profile: nil snapshot")
	}
	out := *snap
	out.Schema = SchemaVersion
	switch enc {
	case EncodingJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(&out)
	case EncodingMsgpack:
		return msgpack.NewEncoder(w).Encode(&out)
	default:
		return fmt.Errorf("profile: unknown encoding %v", enc)
	}
}

// Load reads the snapshot stored at path.
func Load(path string) (*Snapshot, error) {
	enc, err := EncodingFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap, err := Decode(f, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Save writes snap to path, replacing any existing file atomically.
func Save(path string, snap *Snapshot) (err error) {
	enc, err := EncodingFor(path)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err = Encode(f, snap, enc); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
