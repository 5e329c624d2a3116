package memory

import (
	"payments_engine/internal/repository"
)

var (
	_ repository.RecordStore  = (*RecordStore)(nil)
	_ repository.AccountTable = (*AccountTable)(nil)
)
