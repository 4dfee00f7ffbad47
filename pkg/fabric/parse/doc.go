// Package parse turns InfiniBand diagnostic dumps into fabric link records.
//
// Each input line is classified independently as a section header, a link
// record or noise. Three dialects are recognized:
//
//   - [DialectLine]: one port per line with the reporting GUID and name
//     repeated (iblinkinfo -l):
//
//     0x0002c90200412345 "SW1"  3    5[  ] ==( 4X 10.0 Gbps Active/  LinkUp)==>  0x0002c903000abcde  4   10[  ] "node07 HCA-1" ( )
//
//   - [DialectSection]: "Switch: <guid> <name>:" headers followed by port
//     lines that omit the switch identity (iblinkinfo):
//
//     3    5[  ] ==( 4X 10.0 Gbps Active/  LinkUp)==>  4   10[  ] "node07 HCA-1" ( )
//
//   - [DialectNetdiscover]: ibnetdiscover topology files, where the speed is
//     a rate name such as 4xQDR. These list only connected ports, so the
//     port count in each "Switch <ports> ..." header is declared on the
//     switch and the remaining ports show up as free.
//
// [DialectAuto] tries all three on every line. Lines matching nothing are
// ignored; diagnostic dumps are full of them.
//
// Port reports from adapters (the reporting name contains an adapter marker
// such as "HCA", or the line sits under a CA section) are skipped: they
// describe the same cables the switches already reported.
package parse
