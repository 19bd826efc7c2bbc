// Package qr renders frame text as QR code images and reads it back.
//
// Encoding uses skip2/go-qrcode at Medium error correction. Decoding uses
// the gozxing port of ZXing with the try-harder hint so printed or
// photographed codes with some blur still scan.
package qr
