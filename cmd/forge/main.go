// Command forge is the toolkit's CLI: it scans handler source trees,
// curates tool catalogs, generates transport servers, and supervises
// running instances, plus serves the editor control plane over HTTP.
package main

func main() {
	Execute()
}
