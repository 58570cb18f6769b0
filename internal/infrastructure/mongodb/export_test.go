package mongodb

var UsersWithPointsPipeline = usersWithPointsPipeline
