package storage

import (
	"encoding/json"
	"errors"
	"sort"

	"mapbench/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Versioned returns the version stamp for records written by this build.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeResult(r model.Result) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeResult(data []byte) (model.Result, error) {
	var result model.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return model.Result{}, err
	}
	if err := checkVersion(result.VersionedRecord); err != nil {
		return model.Result{}, err
	}
	return result, nil
}

func EncodeSweep(s model.Sweep) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSweep(data []byte) (model.Sweep, error) {
	var sweep model.Sweep
	if err := json.Unmarshal(data, &sweep); err != nil {
		return model.Sweep{}, err
	}
	if err := checkVersion(sweep.VersionedRecord); err != nil {
		return model.Sweep{}, err
	}
	return sweep, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

func sortResults(results []model.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if c := model.CompareTimestamps(results[i].Timestamp, results[j].Timestamp); c != 0 {
			return c < 0
		}
		return results[i].ID < results[j].ID
	})
}
