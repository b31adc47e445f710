// Package files locates market snapshots on disk.
//
// A snapshot path may name a file or a directory. For a directory the
// newest loadable snapshot is chosen, by the date in its file name
// (coinmarketcap_06122017.csv) and otherwise by modification time.
package files
