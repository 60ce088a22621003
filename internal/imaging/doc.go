// Package imaging holds the Bitmap abstraction shared by every capture path
// and the enhancement pipeline that turns one photo into several decoding
// candidates.
//
// A Bitmap is a width, a height and a non-premultiplied RGBA buffer. It is
// built from a live frame (FromImage), from an encoded file (Decode, Load)
// or from an already processed buffer (FromPixels). Filters never modify
// their input.
package imaging
