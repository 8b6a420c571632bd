package shell

const usageText = `Commands:

  help                     show this message
  new                      start a new game (opening roll decides who moves)
  roll [d1 d2]             roll the dice, or set them by hand
  gen [n]                  list legal turns for the current roll (default 15)
  solve [plies] [-log f]   search for the best turn without playing it
  play #N                  play the Nth turn from the last gen listing
  play 24/18 13/11         play by notation (bar/20, 6/off also work)
  aiplay [plies]           search and play the best turn
  pass                     give up the turn (only legal with no moves)
  show, s                  display the board
  pips                     pip counts for both sides
  history                  turns played so far
  autoplay [n] [-threads t] [-file f]
                           run n self-play games and print a summary
  tally [db]               win totals from the results database
  weights [file]           show evaluation weights, or load a set
  set [key value]          show or change configuration
  exit, bye                leave the shell
`

func usage() (*Response, error) {
	return msg(usageText), nil
}
