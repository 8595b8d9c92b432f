// Probe whether the platform enforces W^X on code pages
//
// The probe takes a tiny routine that returns 0, flips its code page to
// read-write-execute, rewrites the "return 0" instruction to "return 1",
// flushes the instruction cache, restores read-execute and calls the routine
// again. The verdict says which of those steps the platform allowed.
//
// A ProtectionDenied verdict is the good outcome: the platform refused to map
// the code page writable and executable at the same time. Success means the
// running code was modified in place, so W^X is not enforced.
//
// Limitations:
//   - Only amd64 and arm64 carry the known instruction encodings. Everything
//     else reports PatternNotFound.
//   - The routine is patched at most once per process and never restored.
//   - Memory map evidence is only available on Linux.
package wxprobe
