/*
Package artwork supplies the source images covers are built from.

A [Source] lists libraries, lists the items of one library in its native
order (newest first) and returns the raw encoded bytes of an item. The
shipped implementation, [DirSource], treats every subdirectory of a root
directory as a library and every image file inside it as an item:

	/media/
	  Movies/
	    dune.jpg
	    arrival.png
	  Shows/
	    ...

Reads go through a small retry loop for NFS stale file handle errors
(ESTALE), with exponential backoff, so libraries mounted over NFS survive
server-side changes.

[Fetcher] turns a list of items into decoded [Artwork] concurrently. Items
that cannot be read or decoded are logged and omitted; the surviving artwork
keeps the order of the input list. Callers decide whether what is left is
enough.
*/
package artwork
