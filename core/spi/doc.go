// Package spi implements descriptor-driven service discovery: named
// implementations of an extensible interface are declared in line-oriented
// descriptor resources bundled with the program, lazily instantiated on
// first use and cached as process-wide singletons. Two names resolving to
// the same concrete type share one instance.
//
// Descriptor resources live under a fixed directory prefix inside each
// resource root, keyed by the qualified interface name, one binding per
// line:
//
//	json = example.com/codec.JSONCodec
//	gob  = example.com/codec.GobCodec # fallback
//
// Example usage:
//
//	reg := spi.New(spi.WithRoot(resources))
//	spi.Declare[Codec](reg, spi.WithDefault("json"))
//	spi.Provide[JSONCodec](reg, "example.com/codec.JSONCodec")
//	spi.Provide[GobCodec](reg, "example.com/codec.GobCodec")
//
//	loader, err := spi.LoaderFor[Codec](reg)
//	if err != nil {
//	    return err
//	}
//	codec, err := loader.Get("json")
package spi
