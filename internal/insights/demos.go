package insights

// DemoQueries are the sample questions offered to new users.
var DemoQueries = []string{
	"List all the species and their scientific names, place which has a Endangered status.",
	"Find the habitat were the highest number of least concern species are found.",
	"Show the date, place, and the habitat where Tiger species were observed.",
	"Calculate the sum of the count for Dhole species.",
	"Which of the users has recorded the most species with a Near Threatened status?",
	"Calculate the sum of count for all species with a Vulnerable status and list as per their names.",
}
