/*
Package records persists props instances through a ports.RecordStore.

A Manager serializes instances with their class tags, stores the resulting
plain mappings and reconstructs them on load. Access to each record ID is
serialized in process and, with WithLocker, across replicas.

Loading with a known model (Load, LoadOrNew, Update) never consults the stored
class tag. LoadAny resolves the tag only for stores created WithTrustedStore;
otherwise it falls back to a generic props.Unresolved with a warning.
*/
package records
