// Package pixel loads images into the canonical 8-bit matrix used by the
// steganalysis indicators and decoders.
//
// Every image is normalized to non-premultiplied RGB. Images with real
// transparency keep a fourth alpha channel; opaque images have three
// channels. PNG, JPEG, GIF, BMP, TIFF and WebP inputs are supported.
package pixel
