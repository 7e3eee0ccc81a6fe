/*
Package ports defines the driven ports (interfaces) used by props services.

These interfaces decouple record handling from concrete backends, so the same
records.Manager works with memory, file or Redis storage.

# Key Interfaces

  - RecordStore: persists serialized instances (plain mappings) by ID.
  - DistributedLocker: provides distributed locking for concurrent record updates across replicas.
  - DefinitionLoader: reads model definitions from a source (Loam repository, memory).
*/
package ports
