package storage

import "fmt"

const (
	schemaVersionKey = "meta:schema_version"
	schemaVersion    = "1"
)

type initStorageFunc func(d *database) error

var initStorageFuncs = []initStorageFunc{
	initSchemaVersion,
}

func initStorage(d *database) error {
	for _, f := range initStorageFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

func initSchemaVersion(d *database) error {
	if err := d.put([]byte(schemaVersionKey), []byte(schemaVersion)); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return nil
}
