// Package trainer runs a tagger's training script in its python virtual
// environment.
//
// Each tagger owns {taggers}/{tagger} holding train.py and a nested
// {tagger} folder with the requirements script. The Invoker bootstraps
// {taggers}/{tagger}/venv on first use under a per-tagger file lock, then
// runs train.py with the train split, dev split, config file, and docker
// context folder as positional arguments. Trainer output is captured in
// {logs}/{config}-{unix seconds}.txt.
//
// A trainer that exits non-zero produces a Result, not an error. Errors are
// reserved for failures to prepare or start the subprocess.
package trainer
