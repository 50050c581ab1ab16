// Package store provides modguard.Store implementations.
//
// # Backends
//
//	Memory  in-process map; Create replaces an existing value
//	Wazero  named module instances in a wazero runtime; Create fails
//	        with errors.KindAlreadyExists for a name already in use
//	Redis   one Redis key per resource under a prefix; Create overwrites
//
// The backends differ on what Create does for a key that already exists.
// Drive them through a guard.Guard so that an active key is never created
// twice.
//
// # Descriptors
//
// Memory stores any descriptor as is and calls Drop on values implementing
// modguard.Dropper when they are destroyed or replaced.
//
// Wazero accepts a wazero.CompiledModule or raw wasm bytes:
//
//	st := store.NewWazero(ctx, store.WazeroConfig{})
//	defer st.Close(ctx)
//	err := st.Create(ctx, "cart", wasmBytes)
//
// Redis accepts string, []byte or encoding.BinaryMarshaler values as is and
// JSON-encodes anything else.
package store
