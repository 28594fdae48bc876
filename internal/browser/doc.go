// Package browser manages headless Chrome sessions through chromedp.
//
// A Manager launches (or attaches to) a browser per call, a Session owns the
// browser and its tabs, and a Page implements navigator.Page on top of one
// tab. Release tears everything down in order: pages, graceful close bounded
// by a grace period, then the allocator, which kills the process.
package browser
