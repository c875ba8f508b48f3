// Package preflight provides readiness checks for the binaries and
// directories a training run depends on.
//
// These checks run in two contexts:
//   - The training driver calls RunAll and CheckSystemDeps before the first
//     target and logs every failure as a warning; the run itself surfaces
//     the hard errors.
//   - The CLI "tagtrain status" command renders every check, including
//     optional ones.
package preflight
