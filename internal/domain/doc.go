// Package domain contains the core model for linefit: points, lines, loss
// readouts and the training vocabulary.
//
// The domain does not depend on the terminal, the trainer implementation, YAML
// parsing or the filesystem. Infra/adapters map into/from these types.
package domain
