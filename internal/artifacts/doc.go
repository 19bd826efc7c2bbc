// Package artifacts turns an ordered list of frame texts into files a
// person can print, play back or carry, and reads those files back into
// images for scanning.
//
// Supported containers:
//
//	png    a single code image, only for single-frame transfers
//	zip    README.txt plus qr-001.png, qr-002.png, ...
//	pdf    one code per page with a caption and page footer
//	gif    one code per animation frame at a fixed interval
//	text   one frame per line, for headless transfers
//
// Rendering is independent per frame and runs in parallel; output order
// always matches input order.
package artifacts
