package cmd

import (
	"github.com/adviso/adviso/pkg/persistence"
	"github.com/adviso/adviso/pkg/persistence/file"
)

// NewPersistence selects a persistence backend from the database URL.
// Only the file provider is implemented; unknown schemes fall back to it.
func NewPersistence(databaseURL string) persistence.Persistence {
	return file.NewPersistence(databaseURL)
}
