// Package hcl discovers and executes registration scripts written in HCL.
//
// A registration script holds one block per registered test. The block type
// selects the kind of test and the label is its name; every attribute in
// the body is an option handed to registry.Register unchanged, so option
// validation stays in the registry:
//
//	host_test "base32" {
//	  dts_overlays = ["boards/native_posix.overlay"]
//	}
//
// Loader.Discover runs a complete discovery pass. It returns either a
// frozen registry or an error, never a partially populated registry.
package hcl
