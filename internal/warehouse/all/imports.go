// Package all wires the built-in warehouse backends into the factory.
//
// It exists purely for side effects: importing it (normally as a blank
// import from the CLI wiring layer) runs the init functions of each concrete
// backend, which register their factories with the warehouse package. After
// that, the following backend kinds are available:
//
//   - "sqlite"   (internal/warehouse/sqlite)
//   - "postgres" (internal/warehouse/postgres)
package all

import (
	_ "github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/warehouse/postgres"
	_ "github.com/loueydridii/The-Flexi-Income-Intelligence-Suite/internal/warehouse/sqlite"
)
