// Package preflight provides readiness checks for the filesystem paths,
// download mirror and external tools refbuild depends on.
//
// These checks run in two contexts:
//   - The build command calls RunAll before the first stage. If any check
//     fails the run aborts before anything is downloaded.
//   - The CLI "refbuild check" command also calls CheckMirror and
//     CheckSystemDeps to display a full readiness report.
package preflight
