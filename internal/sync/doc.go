// Package sync copies snippet and global variable files from disk into the
// CMS record tables.
//
// Overview
//
// Template authors keep snippets and global variables as plain files. A sync
// run turns every file into one record, keyed by an identifier derived from
// the filename:
//
//	<globalvar_file_basepath>/<site>/  → global_variables (variable_name, variable_data)
//	<snippet_file_basepath>/<site>/    → snippets (snippet_name, snippet_contents)
//
// Global variables are synced first, then snippets.
//
// Identifiers
//
// Normalize derives the identifier in three steps: strip the final
// extension, collapse runs of characters outside [A-Za-z0-9_-] into '_',
// then trim '.', '-' and '_' from both ends:
//
//	header.html          → header
//	my.snip.pet.v2.txt   → my_snip_pet_v2
//	-_weird!!name_-.txt  → weird_name
//	...txt               → (empty)
//
// Two filenames that normalize to the same identifier share one record; the
// file processed last wins. An empty identifier is stored like any other.
//
// Reconciliation
//
// For each file the engine counts records with the identifier. None means
// insert, otherwise the contents column is updated. Records are never
// deleted, and nothing is written back to disk.
//
// Usage
//
//	engine, err := sync.New(&sync.Config{
//	    Settings: cfg,
//	    Store:    database,
//	    Verifier: settings.NewVerifier(cfg, nil),
//	})
//	if err != nil {
//	    return err
//	}
//
//	ok, err := engine.SyncAll()
//	switch {
//	case err != nil:
//	    // *FatalError or a store error
//	case !ok:
//	    fmt.Println(engine.ErrorMessage())
//	default:
//	    fmt.Println(engine.LastSyncLog().Snippets)
//	}
//
// Error Handling
//
// Errors fall into three groups:
//
//   - *FatalError: a target directory cannot be opened, created or made
//     writable. The process should exit.
//   - *VerificationError: returned by the Verifier; SyncAll reports false and
//     records the message. No store calls happen.
//   - Store errors abort the run and are returned as-is. Earlier writes of
//     the same run are not rolled back.
package sync
