// Package normalize turns the loose date, time and name strings published by the source
// site into canonical values. Every function is pure; both the table and the feed
// pipelines share it so a game reads the same whichever way it was acquired.
package normalize
