// Package signature reconciles the structural view of a method with the
// documentation attached to it into a single MethodSignatureSpec.
//
// Documentation is the only source of parameter, return and throw types;
// boolean markers (internal, final, deprecated) are the logical OR of both
// sources and can never be retracted by either one.
package signature
